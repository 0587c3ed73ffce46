// Package httpclient provides a configurable HTTP client with bearer or
// basic auth, retry, typed JSON helpers and streaming support.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:5000",
//	    Timeout: 10 * time.Second,
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//
//	resp, err := httpclient.Get[gallery.ImageResponse](client, ctx, "/api/v1/images")
//
// DoStream returns a StreamResponse whose SSE field reads text/event-stream
// bodies; see the sse subpackage.
package httpclient
