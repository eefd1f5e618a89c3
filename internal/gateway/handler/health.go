package handler

import (
	"net/http"

	"repoprep/internal/gateway/respond"
)

type healthResponse struct {
	OK                 bool `json:"ok"`
	ProviderConfigured bool `json:"provider_configured"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		respond.Error(w, http.StatusMethodNotAllowed, MethodNotAllowedMessage)
		return
	}
	respond.JSON(w, http.StatusOK, healthResponse{OK: true, ProviderConfigured: h.llm.Configured()})
}
