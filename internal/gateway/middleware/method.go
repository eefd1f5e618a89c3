package middleware

import (
	"net/http"
	"strings"

	"repoprep/internal/gateway/respond"
)

const MethodNotAllowedMessage = "Method not allowed"

// AllowMethods answers 405 for any other method before next runs, so
// middleware placed after it (rate limiting) never sees rejected methods.
func AllowMethods(methods ...string) Middleware {
	allow := strings.Join(methods, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, m := range methods {
				if r.Method == m {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Allow", allow)
			respond.Error(w, http.StatusMethodNotAllowed, MethodNotAllowedMessage)
		})
	}
}
