package middleware

import "net/http"

// Middleware is an http.Handler decorator.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so they run in the order given.
// Example: Chain(A, B)(h) => A(B(h))
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
