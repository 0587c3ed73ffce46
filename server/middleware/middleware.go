package middleware

import "net/http"

// Middleware wraps an http.Handler. Server-wide middleware is applied to the
// root handler so it covers gin routes and mounted handlers alike.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
