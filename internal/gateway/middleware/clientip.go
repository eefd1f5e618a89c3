package middleware

import (
	"net/http"
	"strings"
)

// UnknownClient is the identity used when no forwarding header is present.
const UnknownClient = "unknown"

// ClientIP is the rate-limit identity of r: the first X-Forwarded-For entry,
// else X-Real-IP, else "unknown". The gateway is expected to sit behind a
// proxy that sets these headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return UnknownClient
}
