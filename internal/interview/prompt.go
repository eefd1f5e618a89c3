package interview

import (
	"encoding/json"
	"fmt"
	"strings"

	llmclient "repoprep/internal/llm/client"
	"repoprep/internal/utils"
)

const (
	maxReadmeChars = 2000
	maxResumeChars = 1000

	jsonOnlySystem = "You output only valid JSON."
	graderSystem   = "You are an interviewer. Grade the candidate's answer based on the ideal answer. Be constructive but brief."
	markdownHint   = " Use markdown formatting for clarity."

	notAvailable = "N/A"
	noCode       = "No specific code files selected."
)

var typeInstructions = map[QuestionType]string{
	Technical:  "Generate ONLY technical questions. Focus on code logic, complexity, design patterns, and library choices.",
	Behavioral: "Generate ONLY behavioral questions using the STAR method. Ask about challenges faced, prioritization, and conflict resolution.",
	Mixed:      "Generate a mix of 2 Technical, 2 Architectural, and 2 Behavioral questions.",
}

const packetSchema = `{
  "project_summary": "Technical summary of the repo.",
  "tech_stack": ["Tech1", "Tech2"],
  "questions": [
    {
      "category": "Architecture" | "Technical" | "Behavioral",
      "q": "The question",
      "strategy": "A brief 1-2 sentence hint on what direction the answer should take.",
      "sample_answer": "A complete, impressive, first-person 'Perfect Answer' that the candidate can study.",
      "difficulty": "Junior" | "Mid" | "Senior"
    }
  ]
}`

// BuildQuestionPrompt renders the question-generation prompt. The README is
// cut to 2000 characters and the resume to 1000.
func BuildQuestionPrompt(readme, code, resume string, qt QuestionType) string {
	instr, ok := typeInstructions[qt]
	if !ok {
		instr = typeInstructions[Mixed]
	}
	readmeText := notAvailable
	if readme != "" {
		readmeText = utils.TruncateRunes(readme, maxReadmeChars)
	}
	codeText := noCode
	if code != "" {
		codeText = code
	}
	resumeText := notAvailable
	if resume != "" {
		resumeText = utils.TruncateRunes(resume, maxResumeChars)
	}

	var b strings.Builder
	b.WriteString("Act as a Senior Technical Interviewer.\n\n")
	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "1. README SUMMARY: %s\n", readmeText)
	fmt.Fprintf(&b, "2. SELECTED CODE SNIPPETS: %s\n", codeText)
	fmt.Fprintf(&b, "3. CANDIDATE RESUME/CONTEXT: %s\n\n", resumeText)
	b.WriteString("TASK:\n")
	fmt.Fprintf(&b, "Generate a JSON object with interview content based on this constraint: %s\n\n", instr)
	b.WriteString("Structure:\n")
	b.WriteString(packetSchema)
	fmt.Fprintf(&b, "\n\nGenerate exactly %d questions.\n", QuestionCount)
	return b.String()
}

// QuestionMessages is the conversation sent for question generation.
func QuestionMessages(readme, code, resume string, qt QuestionType) []llmclient.Message {
	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: jsonOnlySystem},
		{Role: llmclient.RoleUser, Content: BuildQuestionPrompt(readme, code, resume, qt)},
	}
}

// JSONObjectFormat is the response_format value asking for strict JSON.
var JSONObjectFormat = json.RawMessage(`{"type":"json_object"}`)

// GradingMessages is the grader conversation for one answer. The streaming
// variant asks for Markdown.
func GradingMessages(question, ideal, answer string, markdown bool) []llmclient.Message {
	system := graderSystem
	if markdown {
		system += markdownHint
	}
	user := fmt.Sprintf("Question: %s\nIdeal Logic: %s\nCandidate Answer: %s\n\nProvide feedback.", question, ideal, answer)
	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: system},
		{Role: llmclient.RoleUser, Content: user},
	}
}
