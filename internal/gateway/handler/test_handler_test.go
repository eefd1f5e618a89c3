package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmclient "repoprep/internal/llm/client"
)

// fakeLLM is a scripted Completer.
type fakeLLM struct {
	mu         sync.Mutex
	configured bool
	reply      string
	err        error
	openStream func(ctx context.Context) (io.ReadCloser, error)

	lastReq      llmclient.ChatRequest
	lastMessages []llmclient.Message
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Configured() bool { return f.configured }

func (f *fakeLLM) Complete(_ context.Context, req llmclient.ChatRequest) (string, error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeLLM) OpenStream(ctx context.Context, msgs []llmclient.Message) (io.ReadCloser, error) {
	f.mu.Lock()
	f.lastMessages = msgs
	f.mu.Unlock()
	if f.openStream != nil {
		return f.openStream(ctx)
	}
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.reply)), nil
}

const chatBody = `{"messages":[{"role":"user","content":"hi"}],"response_format":{"type":"json_object"}}`

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	h := New(&fakeLLM{configured: true})
	for _, fn := range []http.HandlerFunc{h.HandleChat, h.HandleChatStream} {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "Method not allowed", errorOf(t, rec))
	}
}

func TestHandleChat_MissingKey(t *testing.T) {
	h := New(&fakeLLM{})
	rec := post(h.HandleChat, chatBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MissingKeyMessage, errorOf(t, rec))

	rec = post(h.HandleChatStream, chatBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MissingKeyStreamMessage, errorOf(t, rec))
}

func TestHandleChat_BadBody(t *testing.T) {
	h := New(&fakeLLM{configured: true})
	for _, body := range []string{"", "{", `{"messages":[]}`, `{"messages":"x"}`} {
		rec := post(h.HandleChat, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, errorOf(t, rec), "Invalid request body")
	}
}

func TestHandleChat_Success(t *testing.T) {
	llm := &fakeLLM{configured: true, reply: `{"project_summary":"x"}`}
	rec := post(New(llm).HandleChat, chatBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"content":"{\"project_summary\":\"x\"}"}`, rec.Body.String())
	assert.JSONEq(t, `{"type":"json_object"}`, string(llm.lastReq.ResponseFormat))
	assert.Equal(t, "hi", llm.lastReq.Messages[0].Content)
}

func TestHandleChat_ProviderErrorEchoed(t *testing.T) {
	llm := &fakeLLM{configured: true, err: &llmclient.ProviderError{Status: 401, Message: "Incorrect API key provided"}}
	rec := post(New(llm).HandleChat, chatBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect API key provided", errorOf(t, rec))
}

func TestHandleChat_TransportFailure(t *testing.T) {
	llm := &fakeLLM{configured: true, err: errors.New("dial tcp: connection refused")}
	rec := post(New(llm).HandleChat, chatBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, errorOf(t, rec), "connection refused")
}

func TestHandleChatStream_PassThrough(t *testing.T) {
	frames := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\ndata: [DONE]\n\n"
	llm := &fakeLLM{configured: true, reply: frames}
	rec := post(New(llm).HandleChatStream, `{"messages":[{"role":"user","content":"grade"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, frames, rec.Body.String())
	assert.True(t, rec.Flushed)
	assert.Equal(t, "grade", llm.lastMessages[0].Content)
}

func TestHandleChatStream_ProviderError(t *testing.T) {
	llm := &fakeLLM{configured: true, err: &llmclient.ProviderError{Status: 429, Message: "Rate limit reached"}}
	rec := post(New(llm).HandleChatStream, chatBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Rate limit reached", errorOf(t, rec))
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	New(&fakeLLM{}).HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"provider_configured":false}`, rec.Body.String())
}

// The real provider client behind the handler: missing key is checked per
// request and never echoes the credential.
func TestHandleChat_WithOpenAIClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"pong"}}]}`)
	}))
	defer upstream.Close()

	c := llmclient.NewOpenAIClient(llmclient.Config{APIKey: "sk-secret", BaseURL: upstream.URL})
	rec := post(New(c).HandleChat, chatBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":"pong"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "sk-secret")
}
