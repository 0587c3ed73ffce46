// Package server provides the HTTP server: a gin engine mounted on a root
// ServeMux and served over HTTP/1.1 and h2c.
//
// Server-wide middleware (server/middleware) wraps the whole handler:
// recovery, request ID, CORS, body size limit and request logging. The
// bearer token guard is a gin middleware applied per route.
//
// Default endpoints (server/endpoint) are /health and /info.
package server
