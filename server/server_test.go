package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/imagefeed/component"
	apperrors "github.com/kbukum/imagefeed/errors"
	"github.com/kbukum/imagefeed/logger"
	"github.com/kbukum/imagefeed/server/endpoint"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	var buf bytes.Buffer
	return New(cfg, logger.NewWithWriter(&logger.Config{Level: "error", Format: logger.FormatJSON}, "test", &buf))
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 5000 || cfg.MaxBodySize != "64KB" || cfg.WriteTimeout != 0 {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected port error")
	}
}

func TestServer_DefaultsAndHandler(t *testing.T) {
	s := newTestServer(t)
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "sse", Status: component.StatusDegraded}}
	}
	s.ApplyDefaults("imagefeed", checker)
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })

	h := s.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d", rr.Code)
	}
	var health endpoint.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != component.StatusDegraded || health.Service != "imagefeed" {
		t.Errorf("health = %+v", health)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected request id header from middleware")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"service":"imagefeed"`) {
		t.Errorf("info = %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("panic status = %d", rr.Code)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("imagefeed", func(context.Context) []component.Health {
		return []component.Health{
			{Name: "sse", Status: component.StatusDegraded},
			{Name: "redis", Status: component.StatusUnhealthy},
		}
	})
	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/health", http.StatusServiceUnavailable, `"status":"unhealthy"`},
		{"/readyz", http.StatusServiceUnavailable, `"status":"not_ready"`},
		{"/livez", http.StatusOK, `"status":"alive"`},
		{"/version", http.StatusOK, `"version":"dev"`},
		{"/debug/runtime", http.StatusOK, `"goroutines":`},
	}
	for _, tc := range tests {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
		if rr.Code != tc.status || !strings.Contains(rr.Body.String(), tc.body) {
			t.Errorf("%s = %d %s", tc.path, rr.Code, rr.Body.String())
		}
	}
}

func TestReadiness_DegradedIsReady(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("imagefeed", func(context.Context) []component.Health {
		return []component.Health{{Name: "redis", Status: component.StatusDegraded}}
	})
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ready"`) {
		t.Errorf("readyz = %d %s", rr.Code, rr.Body.String())
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	s.GinEngine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	shutdownCalled := make(chan struct{})
	s.OnShutdown(func() { close(shutdownCalled) })

	c := NewComponent(s)
	if c.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("expected healthy after start")
	}

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q", body)
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	<-shutdownCalled
	if c.Describe().Type != "server" {
		t.Errorf("describe = %+v", c.Describe())
	}
}

type handlers struct{}

func (handlers) SendImage(c *gin.Context) {}

func TestComponent_Routes(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("imagefeed", nil)
	s.GinEngine().POST("/api/v1/send_image", handlers{}.SendImage)
	s.GinEngine().GET("/api/v1/images", func(*gin.Context) {})

	routes := NewComponent(s).Routes()
	if len(routes) != 8 {
		t.Fatalf("routes = %+v", routes)
	}
	if routes[0].Path != "/api/v1/images" || routes[1].Path != "/api/v1/send_image" {
		t.Errorf("api routes should sort first: %+v", routes)
	}
	for _, r := range routes[2:] {
		if !strings.HasSuffix(r.Handler, "(system)") {
			t.Errorf("system route not labeled: %+v", r)
		}
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/kbukum/imagefeed/api.(*Handlers).SendImage-fm", "Handlers.SendImage"},
		{"github.com/kbukum/imagefeed/server/endpoint.Health.func1", "health"},
		{"main.main.func2", "main"},
	}
	for _, tc := range tests {
		if got := formatHandlerName(tc.in); got != tc.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{"app error", apperrors.MissingField("url"), http.StatusBadRequest, apperrors.ErrCodeMissingField},
		{"wrapped app error", fmt.Errorf("submit: %w", apperrors.ServiceUnavailable("stream")), http.StatusServiceUnavailable, apperrors.ErrCodeServiceUnavailable},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, apperrors.ErrCodeInvalidInput},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", body.Error.Code, tc.wantCode)
			}
		})
	}
}
