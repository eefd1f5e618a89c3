package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmclient "repoprep/internal/llm/client"
	"repoprep/internal/llm/stream"
)

type fakeBackend struct {
	reply     string
	err       error
	fragments []string

	lastReq    llmclient.ChatRequest
	lastStream []llmclient.Message
}

func (f *fakeBackend) Chat(_ context.Context, req llmclient.ChatRequest) (string, error) {
	f.lastReq = req
	return f.reply, f.err
}

func (f *fakeBackend) ChatStream(_ context.Context, msgs []llmclient.Message, fn stream.FragmentFunc) (string, error) {
	f.lastStream = msgs
	acc := ""
	for _, frag := range f.fragments {
		acc += frag
		fn(frag, acc)
	}
	return acc, f.err
}

func TestService_GenerateQuestions(t *testing.T) {
	b := &fakeBackend{reply: "```json\n" + mustJSON(t, samplePacket(6)) + "\n```"}
	s := NewService(b)

	p, err := s.GenerateQuestions(context.Background(), "readme", "code", "", Technical)
	require.NoError(t, err)
	assert.Len(t, p.Questions, 6)
	assert.JSONEq(t, `{"type":"json_object"}`, string(b.lastReq.ResponseFormat))
	assert.Len(t, b.lastReq.Messages, 2)
}

func TestService_GenerateQuestions_Malformed(t *testing.T) {
	s := NewService(&fakeBackend{reply: mustJSON(t, samplePacket(4))})
	_, err := s.GenerateQuestions(context.Background(), "", "", "", Mixed)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestService_GenerateQuestions_BackendError(t *testing.T) {
	boom := errors.New("Too many requests")
	s := NewService(&fakeBackend{err: boom})
	_, err := s.GenerateQuestions(context.Background(), "", "", "", Mixed)
	assert.ErrorIs(t, err, boom)
}

func TestService_EvaluateAnswerStreaming(t *testing.T) {
	b := &fakeBackend{fragments: []string{"Good ", "answer."}}
	s := NewService(b)

	var cumulative []string
	out, err := s.EvaluateAnswerStreaming(context.Background(), "Q", "ideal", "mine", func(_, c string) {
		cumulative = append(cumulative, c)
	})
	require.NoError(t, err)
	assert.Equal(t, "Good answer.", out)
	assert.Equal(t, []string{"Good ", "Good answer."}, cumulative)
	assert.Contains(t, b.lastStream[0].Content, "markdown")
}

func TestService_EvaluateAnswer(t *testing.T) {
	b := &fakeBackend{reply: "Solid."}
	out, err := NewService(b).EvaluateAnswer(context.Background(), "Q", "ideal", "mine")
	require.NoError(t, err)
	assert.Equal(t, "Solid.", out)
	assert.Empty(t, b.lastReq.ResponseFormat)
	assert.NotContains(t, b.lastReq.Messages[0].Content, "markdown")

	_, err = NewService(&fakeBackend{}).EvaluateAnswer(context.Background(), "Q", "i", "a")
	assert.Error(t, err)
}
