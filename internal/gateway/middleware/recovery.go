package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"repoprep/internal/gateway/respond"
)

// Recovery turns a handler panic into a 500 and logs the stack.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("panic recovered method=%s path=%s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				respond.Error(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
