package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"repoprep/internal/gateway/respond"
	llmclient "repoprep/internal/llm/client"
)

const streamCopySize = 4096

// HandleChatStream relays the provider's event stream byte for byte,
// flushing after every read so fragments reach the client promptly.
func (h *Handler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	if !h.allowPost(w, r) {
		return
	}
	if !h.llm.Configured() {
		log.Printf("chat-stream: provider API key not configured")
		respond.Error(w, http.StatusInternalServerError, MissingKeyStreamMessage)
		return
	}
	req, err := decodeChatRequest(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := h.llm.OpenStream(r.Context(), req.Messages)
	if err != nil {
		var pe *llmclient.ProviderError
		switch {
		case errors.As(err, &pe):
			respond.Error(w, pe.Status, pe.Message)
		case errors.Is(err, llmclient.ErrMissingAPIKey):
			respond.Error(w, http.StatusInternalServerError, MissingKeyStreamMessage)
		default:
			log.Printf("chat-stream: backend exception: %v", err)
			respond.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer body.Close()

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	buf := make([]byte, streamCopySize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				// client went away; closing body cancels the upstream read
				return
			}
			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				return
			}
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) && r.Context().Err() == nil {
				log.Printf("chat-stream: upstream read failed: %v", rerr)
			}
			return
		}
	}
}
