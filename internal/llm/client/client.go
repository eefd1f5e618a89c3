package llmclient

import (
	"context"
	"encoding/json"
	"io"
)

// Message is one chat turn in the provider's wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is the body accepted by the gateway's chat endpoints.
type ChatRequest struct {
	Messages       []Message       `json:"messages"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

// Completer is the provider surface used by the gateway.
type Completer interface {
	Name() string
	// Configured reports whether a credential is available.
	Configured() bool
	// Complete runs a non-streaming completion and returns the message content.
	Complete(ctx context.Context, req ChatRequest) (string, error)
	// OpenStream starts a streaming completion and returns the raw
	// event-stream body. The caller closes it.
	OpenStream(ctx context.Context, messages []Message) (io.ReadCloser, error)
}
