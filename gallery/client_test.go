package gallery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/imagefeed/errors"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(PathSendImage, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errors.Unauthorized("").ToResponse())
			return
		}
		var req SubmitRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.URL == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(errors.MissingField("url").ToResponse())
			return
		}
		_ = json.NewEncoder(w).Encode(SubmitResponse{Received: true, URL: req.URL})
	})
	mux.HandleFunc(PathImages, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ImageResponse{Success: true, Data: []Image{{ID: "1", URL: "http://x/a.png"}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SendImage(t *testing.T) {
	srv := newAPIServer(t)
	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Token: "secret-token"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := c.SendImage(context.Background(), "http://x/a.png", "hi")
	if err != nil {
		t.Fatalf("SendImage: %v", err)
	}
	if !resp.Received || resp.URL != "http://x/a.png" {
		t.Errorf("response = %+v", resp)
	}
}

func TestClient_SendImageErrors(t *testing.T) {
	srv := newAPIServer(t)
	tests := []struct {
		name   string
		token  string
		url    string
		code   errors.ErrorCode
		status int
	}{
		{"unauthorized", "", "http://x/a.png", errors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"validation", "secret-token", "", errors.ErrCodeMissingField, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := NewClient(ClientConfig{BaseURL: srv.URL, Token: tc.token})
			_, err := c.SendImage(context.Background(), tc.url, "")
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != tc.code || appErr.HTTPStatus != tc.status {
				t.Errorf("got %s/%d, want %s/%d", appErr.Code, appErr.HTTPStatus, tc.code, tc.status)
			}
		})
	}
}

func TestClient_Images(t *testing.T) {
	srv := newAPIServer(t)
	c, _ := NewClient(ClientConfig{BaseURL: srv.URL})

	images, err := c.Images(context.Background())
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if len(images) != 1 || images[0].URL != "http://x/a.png" {
		t.Errorf("images = %+v", images)
	}
}
