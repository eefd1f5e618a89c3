package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"repoprep/internal/gateway/respond"
	llmclient "repoprep/internal/llm/client"
)

const (
	MethodNotAllowedMessage = "Method not allowed"
	// MissingKeyMessage and MissingKeyStreamMessage are the diagnostics for an
	// unset provider credential on the two chat endpoints.
	MissingKeyMessage       = "Server Error: API Key missing. Did you restart the server?"
	MissingKeyStreamMessage = "Server Error: API Key missing."

	maxBodyBytes = 1 << 20
)

// Handler serves the gateway endpoints on top of one provider client.
type Handler struct {
	llm llmclient.Completer
}

func New(c llmclient.Completer) *Handler {
	return &Handler{llm: c}
}

func (h *Handler) allowPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.Error(w, http.StatusMethodNotAllowed, MethodNotAllowedMessage)
		return false
	}
	return true
}

func decodeChatRequest(r *http.Request) (llmclient.ChatRequest, error) {
	var req llmclient.ChatRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("Invalid request body: %v", err)
	}
	if len(req.Messages) == 0 {
		return req, errors.New("Invalid request body: messages is required")
	}
	return req, nil
}
