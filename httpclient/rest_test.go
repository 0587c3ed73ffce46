package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type echo struct {
	Received bool   `json:"received"`
	URL      string `json:"url"`
}

type errorEnvelope struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestGetAndPost_Typed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("accept = %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("X-Trace") != "t1" {
			t.Errorf("missing option header")
		}
		var in map[string]string
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&in)
		}
		_ = json.NewEncoder(w).Encode(echo{Received: true, URL: in["url"]})
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	post, err := Post[echo](c, context.Background(), "/send", map[string]string{"url": "http://x/a"}, WithHeader("X-Trace", "t1"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !post.Data.Received || post.Data.URL != "http://x/a" {
		t.Errorf("post data = %+v", post.Data)
	}

	get, err := Get[echo](c, context.Background(), "/get", WithHeader("X-Trace", "t1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if get.StatusCode != http.StatusOK || !get.Data.Received {
		t.Errorf("get = %+v", get)
	}
}

func TestPost_ErrorBodyDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})
	resp, err := Post[errorEnvelope](c, context.Background(), "/", map[string]string{})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if resp == nil || resp.Data.Error.Code != "INVALID_INPUT" {
		t.Errorf("expected decoded error body, got %+v", resp)
	}
}

func TestGet_DecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})
	if _, err := Get[echo](c, context.Background(), "/", WithRequestAuth(BearerAuth("x"))); err == nil {
		t.Error("expected decode error")
	}
}
