// Package interview builds the prompts sent to the model and validates the
// interview packet it returns.
package interview

import (
	"errors"
	"fmt"
	"strings"
)

// QuestionCount is the number of questions every packet carries.
const QuestionCount = 6

// ErrMalformedPacket wraps every decode or validation failure of a packet.
var ErrMalformedPacket = errors.New("interview: malformed packet")

// QuestionType selects the question mix requested from the model.
type QuestionType string

const (
	Mixed      QuestionType = "mixed"
	Technical  QuestionType = "technical"
	Behavioral QuestionType = "behavioral"
)

// ParseQuestionType maps user input to a QuestionType. Unknown values fall
// back to Mixed.
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(strings.ToLower(strings.TrimSpace(s))) {
	case Technical:
		return Technical
	case Behavioral:
		return Behavioral
	default:
		return Mixed
	}
}

// Packet is the generated interview guide for one repository.
type Packet struct {
	ProjectSummary string     `json:"project_summary"`
	TechStack      []string   `json:"tech_stack"`
	Questions      []Question `json:"questions"`
}

type Question struct {
	Category     string `json:"category"`
	Q            string `json:"q"`
	Strategy     string `json:"strategy"`
	SampleAnswer string `json:"sample_answer"`
	Difficulty   string `json:"difficulty"`
}

// String is used in CLI listings.
func (q Question) String() string {
	if q.Difficulty == "" {
		return fmt.Sprintf("[%s] %s", q.Category, q.Q)
	}
	return fmt.Sprintf("[%s/%s] %s", q.Category, q.Difficulty, q.Q)
}
