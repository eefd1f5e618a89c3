// Package practice runs the mock-interview chat for one question.
package practice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	llmclient "repoprep/internal/llm/client"
	"repoprep/internal/llm/stream"
)

// ErrorNotice is appended as an assistant message when grading fails.
const ErrorNotice = "Error connecting to AI tutor. Please try again."

var (
	ErrBusy        = errors.New("practice: an answer is already being graded")
	ErrEmptyAnswer = errors.New("practice: answer is empty")
)

// Grader streams feedback for one answer. *interview.Service implements it.
type Grader interface {
	EvaluateAnswerStreaming(ctx context.Context, question, ideal, answer string, fn stream.FragmentFunc) (string, error)
}

// Transcript is the ordered chat history of a session.
type Transcript []llmclient.Message

// Session is the chat for one question. Its transcript is discarded with it.
type Session struct {
	question string
	ideal    string
	grader   Grader

	busy   atomic.Bool
	mu     sync.Mutex
	msgs   Transcript
	cancel context.CancelFunc
}

func NewSession(g Grader, question, idealAnswer string) *Session {
	return &Session{grader: g, question: question, ideal: idealAnswer}
}

// Transcript returns a copy of the messages so far.
func (s *Session) Transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(Transcript(nil), s.msgs...)
}

func (s *Session) appendMsg(role, content string) {
	s.mu.Lock()
	s.msgs = append(s.msgs, llmclient.Message{Role: role, Content: content})
	s.mu.Unlock()
}

// Send records answer as a user message and streams the grading. On success
// the full feedback is appended. On abort nothing more is appended and the
// error is stream.ErrAborted. On failure any partial feedback is kept as its
// own message, followed by ErrorNotice.
func (s *Session) Send(ctx context.Context, answer string, onFragment stream.FragmentFunc) (string, error) {
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.busy.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	s.appendMsg(llmclient.RoleUser, answer)
	if onFragment == nil {
		onFragment = func(string, string) {}
	}
	text, err := s.grader.EvaluateAnswerStreaming(ctx, s.question, s.ideal, answer, onFragment)
	switch {
	case err == nil:
		s.appendMsg(llmclient.RoleAssistant, text)
		return text, nil
	case errors.Is(err, stream.ErrAborted) || ctx.Err() != nil:
		return text, stream.ErrAborted
	default:
		var se *stream.Error
		if errors.As(err, &se) && se.Partial != "" {
			s.appendMsg(llmclient.RoleAssistant, se.Partial)
		} else if text != "" {
			s.appendMsg(llmclient.RoleAssistant, text)
		}
		s.appendMsg(llmclient.RoleAssistant, ErrorNotice)
		return text, err
	}
}

// Cancel aborts the in-flight exchange, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
