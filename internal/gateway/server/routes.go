package server

import (
	"net/http"

	"repoprep/internal/gateway/handler"
	"repoprep/internal/gateway/middleware"
)

func NewMux(h *handler.Handler, limiter middleware.Limiter) http.Handler {
	mux := http.NewServeMux()

	// Chat proxy; only the non-streaming endpoint is rate limited.
	mux.Handle("/api/chat", middleware.Chain(
		middleware.AllowMethods(http.MethodPost),
		middleware.RateLimit(limiter),
	)(http.HandlerFunc(h.HandleChat)))
	mux.HandleFunc("/api/chat-stream", h.HandleChatStream)

	// Server-side practice grading
	mux.HandleFunc("/api/practice", h.HandlePracticeWS)

	mux.HandleFunc("/healthz", h.HandleHealth)

	return middleware.Chain(
		middleware.Recovery,
		middleware.RequestID,
		middleware.Logging(nil),
		middleware.CORS,
	)(mux)
}
