// Package errors provides the structured error type shared by imagefeed's
// HTTP surface and its services: machine-readable codes, HTTP status
// mapping, and retryable detection, serialized as an RFC 7807-style envelope.
package errors
