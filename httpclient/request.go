package httpclient

import (
	"io"
	"net/http"

	"github.com/kbukum/imagefeed/httpclient/sse"
)

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is appended to the client's BaseURL unless it is an absolute URL.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body accepts io.Reader, []byte, string, or any value to JSON-encode.
	Body any
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
	// LastEventID is sent as the Last-Event-ID header by DoStream and seeds
	// the returned SSE reader.
	LastEventID string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StreamResponse wraps a response whose body is consumed incrementally.
// Exactly one of SSE and Body is set.
type StreamResponse struct {
	StatusCode  int
	Headers     map[string]string
	ContentType string
	// SSE reads text/event-stream bodies.
	SSE sse.Reader
	// Body is the raw stream for any other content type.
	Body    io.ReadCloser
	rawResp *http.Response
}

// Close releases the stream.
func (r *StreamResponse) Close() error {
	switch {
	case r.SSE != nil:
		return r.SSE.Close()
	case r.Body != nil:
		return r.Body.Close()
	case r.rawResp != nil && r.rawResp.Body != nil:
		return r.rawResp.Body.Close()
	}
	return nil
}
