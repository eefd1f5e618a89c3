package middleware

import (
	"log"
	"net/http"
	"strconv"

	"repoprep/internal/gateway/respond"
	"repoprep/internal/ratelimit"
)

const TooManyRequestsMessage = "Too many requests. Please wait before trying again."

// Limiter is satisfied by *ratelimit.FixedWindow.
type Limiter interface {
	Allow(key string) ratelimit.Decision
}

// RateLimit enforces l per ClientIP. The X-RateLimit-* headers are set on
// every response, allowed or not.
func RateLimit(l Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientIP(r)
			d := l.Allow(client)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.Itoa(d.ResetSeconds()))

			if !d.Allowed {
				log.Printf("rate limit exceeded client=%s limit=%d reset=%ds", client, d.Limit, d.ResetSeconds())
				respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{
					Error:      TooManyRequestsMessage,
					RetryAfter: d.ResetSeconds(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
