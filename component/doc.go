// Package component defines the lifecycle contract shared by imagefeed's
// infrastructure pieces (database, redis bridge, SSE hub, HTTP server) and a
// registry that starts them in order and stops them in reverse.
package component
