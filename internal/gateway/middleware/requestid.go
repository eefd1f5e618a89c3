package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"repoprep/internal/llm"
)

const RequestIDHeader = "X-Request-Id"

// RequestID assigns each request an id, echoed in the response header and
// carried in the request context for provider logs. An incoming id is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := llm.WithRequestID(r.Context(), id)
		ctx = llm.WithCaller(ctx, ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromRequest returns the id assigned by RequestID, if any.
func RequestIDFromRequest(r *http.Request) string {
	if id := llm.RequestIDFrom(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(RequestIDHeader)
}
