package interview

import (
	"fmt"
	"strings"

	"repoprep/internal/util/jsonutil"
)

// ParsePacket decodes a model reply into a Packet. Code fences are stripped
// first. Every failure wraps ErrMalformedPacket.
func ParsePacket(content string) (*Packet, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedPacket)
	}
	var p Packet
	if err := jsonutil.UnmarshalLLM(content, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the packet shape callers rely on.
func (p *Packet) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil packet", ErrMalformedPacket)
	}
	if strings.TrimSpace(p.ProjectSummary) == "" {
		return fmt.Errorf("%w: project_summary is empty", ErrMalformedPacket)
	}
	if len(p.Questions) != QuestionCount {
		return fmt.Errorf("%w: want %d questions, got %d", ErrMalformedPacket, QuestionCount, len(p.Questions))
	}
	for i, q := range p.Questions {
		switch {
		case strings.TrimSpace(q.Q) == "":
			return fmt.Errorf("%w: question %d has no text", ErrMalformedPacket, i+1)
		case strings.TrimSpace(q.Strategy) == "":
			return fmt.Errorf("%w: question %d has no strategy", ErrMalformedPacket, i+1)
		case strings.TrimSpace(q.SampleAnswer) == "":
			return fmt.Errorf("%w: question %d has no sample_answer", ErrMalformedPacket, i+1)
		}
	}
	return nil
}
