package handler

import (
	"errors"
	"log"
	"net/http"

	"repoprep/internal/gateway/respond"
	llmclient "repoprep/internal/llm/client"
)

type chatResponse struct {
	Content string `json:"content"`
}

// HandleChat proxies one non-streaming completion. Provider failures keep
// the provider's status and message.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !h.allowPost(w, r) {
		return
	}
	if !h.llm.Configured() {
		log.Printf("chat: provider API key not configured")
		respond.Error(w, http.StatusInternalServerError, MissingKeyMessage)
		return
	}
	req, err := decodeChatRequest(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := h.llm.Complete(r.Context(), req)
	if err != nil {
		var pe *llmclient.ProviderError
		switch {
		case errors.As(err, &pe):
			respond.Error(w, pe.Status, pe.Message)
		case errors.Is(err, llmclient.ErrMissingAPIKey):
			respond.Error(w, http.StatusInternalServerError, MissingKeyMessage)
		default:
			log.Printf("chat: backend exception: %v", err)
			respond.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respond.JSON(w, http.StatusOK, chatResponse{Content: content})
}
