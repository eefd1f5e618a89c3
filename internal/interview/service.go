package interview

import (
	"context"
	"errors"

	llmclient "repoprep/internal/llm/client"
	"repoprep/internal/llm/stream"
)

// Backend is the completion surface the service talks to. The gateway
// client implements it.
type Backend interface {
	Chat(ctx context.Context, req llmclient.ChatRequest) (string, error)
	ChatStream(ctx context.Context, messages []llmclient.Message, fn stream.FragmentFunc) (string, error)
}

// Service generates packets and grades answers through a Backend.
type Service struct {
	backend Backend
}

func NewService(b Backend) *Service {
	return &Service{backend: b}
}

// GenerateQuestions requests a packet and validates it.
func (s *Service) GenerateQuestions(ctx context.Context, readme, code, resume string, qt QuestionType) (*Packet, error) {
	content, err := s.backend.Chat(ctx, llmclient.ChatRequest{
		Messages:       QuestionMessages(readme, code, resume, qt),
		ResponseFormat: JSONObjectFormat,
	})
	if err != nil {
		return nil, err
	}
	return ParsePacket(content)
}

// EvaluateAnswerStreaming grades an answer and streams the feedback to fn.
// Cancellation of ctx returns stream.ErrAborted.
func (s *Service) EvaluateAnswerStreaming(ctx context.Context, question, ideal, answer string, fn stream.FragmentFunc) (string, error) {
	return s.backend.ChatStream(ctx, GradingMessages(question, ideal, answer, true), fn)
}

// EvaluateAnswer is the non-streaming fallback.
func (s *Service) EvaluateAnswer(ctx context.Context, question, ideal, answer string) (string, error) {
	content, err := s.backend.Chat(ctx, llmclient.ChatRequest{
		Messages: GradingMessages(question, ideal, answer, false),
	})
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", errors.New("interview: empty feedback")
	}
	return content, nil
}
