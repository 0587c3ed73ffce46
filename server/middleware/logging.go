package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/imagefeed/logger"
)

var quietPaths = map[string]bool{
	"/health":        true,
	"/livez":         true,
	"/readyz":        true,
	"/info":          true,
	"/version":       true,
	"/debug/runtime": true,
}

// RequestLogger logs each request with method, path, status and duration.
// Server errors log at error level, client errors at warn, the rest at debug.
// Health, liveness, readiness and build info endpoints are not logged.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			status := rec.Status()
			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			l := log.WithContext(r.Context())
			switch {
			case status >= 500:
				l.Error("Request completed", fields)
			case status >= 400:
				l.Warn("Request completed", fields)
			default:
				l.Debug("Request completed", fields)
			}
		})
	}
}
