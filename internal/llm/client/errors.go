package llmclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultProviderMessage is used when the provider's error body carries none.
const DefaultProviderMessage = "OpenAI API Error"

var (
	ErrMissingAPIKey = errors.New("llm: api key missing")
	ErrNoChoices     = errors.New("llm: provider returned no choices")
)

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.Status, e.Message)
}

const maxErrorBody = 2048

// newProviderError extracts error.message from an OpenAI-style error body.
func newProviderError(status int, body []byte) *ProviderError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg = strings.TrimSpace(parsed.Error.Message)
	}
	if msg == "" {
		msg = DefaultProviderMessage
	}
	return &ProviderError{Status: status, Message: msg}
}
