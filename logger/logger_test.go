package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer) *Logger {
	return NewWithWriter(&Config{Level: "debug", Format: FormatJSON}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if idx := strings.LastIndex(line, "\n"); idx >= 0 {
		line = line[idx+1:]
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.Service() != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.Service())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: FormatJSON}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf)

	l.Info("Image stored", map[string]interface{}{"image_id": "abc"})

	m := decodeLine(t, &buf)
	if m["message"] != "Image stored" {
		t.Errorf("message = %v", m["message"])
	}
	if m["image_id"] != "abc" {
		t.Errorf("image_id = %v", m["image_id"])
	}
	if m["service"] != "test-svc" {
		t.Errorf("service = %v", m["service"])
	}
	if m["level"] != "info" {
		t.Errorf("level = %v", m["level"])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf).WithComponent("sse")

	l.Debug("Client registered")

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "sse" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if l.Service() != "test-svc" {
		t.Errorf("service should be preserved, got %q", l.Service())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTrace(ctx, "trace-1", "span-1")

	newJSONLogger(&buf).WithContext(ctx).Warn("slow")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v", m[FieldRequestID])
	}
	if m[FieldTraceID] != "trace-1" || m[FieldSpanID] != "span-1" {
		t.Errorf("trace fields = %v / %v", m[FieldTraceID], m[FieldSpanID])
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Errorf("RequestIDFromContext = %q", RequestIDFromContext(ctx))
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("expected empty request id for bare context")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf).
		WithFields(map[string]interface{}{"client_id": "c1"}).
		WithError(os.ErrClosed)

	l.Error("write failed")

	m := decodeLine(t, &buf)
	if m["client_id"] != "c1" {
		t.Errorf("client_id = %v", m["client_id"])
	}
	if m["error"] != os.ErrClosed.Error() {
		t.Errorf("error = %v", m["error"])
	}
}

func TestConsoleFormatTagsService(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "imagefeed", &buf)

	l.Info("ready")

	out := buf.String()
	if !strings.Contains(out, "[IMA][INF]") {
		t.Errorf("expected service and level tag, got %q", out)
	}
	if !strings.Contains(out, "ready") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestFields(t *testing.T) {
	m := Fields("op", "save", "count", 3, 42, "ignored", "dangling")
	if m["op"] != "save" || m["count"] != 3 {
		t.Errorf("unexpected fields %v", m)
	}
	if len(m) != 2 {
		t.Errorf("expected 2 fields, got %d", len(m))
	}

	ef := ErrorFields("publish", os.ErrDeadlineExceeded)
	if ef[FieldOperation] != "publish" || ef[FieldError] == "" {
		t.Errorf("unexpected error fields %v", ef)
	}

	df := DurationFields("connect", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("duration = %v", df[FieldDuration])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
		{"bad output", Config{Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
