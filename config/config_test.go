package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

type streamSection struct {
	URL        string        `mapstructure:"url"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Event      string        `mapstructure:"event"`
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Stream        streamSection `mapstructure:"stream"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const baseYAML = `
name: feedwatch
environment: staging
stream:
  url: http://localhost:5000/stream/listen
  retry_delay: 3s
  event: new_msg
`

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name to follow Name, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "production"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"bad environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("feedwatch", &cfg, WithConfigFile(writeConfig(t, baseYAML)), WithFileSystem(&mockFS{real: true})); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "feedwatch" || cfg.Environment != "staging" {
		t.Errorf("base fields = %q/%q", cfg.Name, cfg.Environment)
	}
	if cfg.Stream.RetryDelay != 3*time.Second {
		t.Errorf("retry_delay = %v", cfg.Stream.RetryDelay)
	}
	if cfg.Stream.Event != "new_msg" {
		t.Errorf("event = %q", cfg.Stream.Event)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Setenv("STREAM_RETRY_DELAY", "10s")

	var cfg testConfig
	if err := LoadConfig("feedwatch", &cfg, WithConfigFile(writeConfig(t, baseYAML)), WithFileSystem(&mockFS{real: true})); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Stream.RetryDelay != 10*time.Second {
		t.Errorf("expected env override, got %v", cfg.Stream.RetryDelay)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("STREAM_URL", "http://env/stream/listen")

	fs := pflag.NewFlagSet("feedwatch", pflag.ContinueOnError)
	fs.String("stream.url", "", "stream endpoint")
	fs.String("stream.event", "", "event name")
	if err := fs.Parse([]string{"--stream.url=http://flag/stream/listen"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	var cfg testConfig
	err := LoadConfig("feedwatch", &cfg,
		WithConfigFile(writeConfig(t, baseYAML)),
		WithFileSystem(&mockFS{real: true}),
		WithFlags(fs),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Stream.URL != "http://flag/stream/listen" {
		t.Errorf("expected flag to win, got %q", cfg.Stream.URL)
	}
	if cfg.Stream.Event != "new_msg" {
		t.Errorf("unset flag must not override file, got %q", cfg.Stream.Event)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg,
		WithFileSystem(&mockFS{}),
		WithDefaults(map[string]interface{}{"stream.event": "new_msg"}),
	)
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed without files, got %v", err)
	}
	if cfg.Stream.Event != "new_msg" {
		t.Errorf("expected default event, got %q", cfg.Stream.Event)
	}
}

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/imagefeed/config.yml": true,
		"./config.yml":               true,
		"./.env":                     true,
	}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("imagefeed", LoaderConfig{})
	if files.ConfigFile != "./cmd/imagefeed/config.yml" {
		t.Errorf("config file = %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("env file = %q", files.EnvFile)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	files := (&Resolver{FileSystem: &mockFS{}}).ResolveFiles("x", LoaderConfig{ConfigFile: "/etc/x.yml", EnvFile: "/etc/x.env"})
	if files.ConfigFile != "/etc/x.yml" || files.EnvFile != "/etc/x.env" {
		t.Errorf("explicit paths not preserved: %+v", files)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("STREAM_RETRY_DELAY")
	want := map[string]bool{
		"stream_retry_delay": true,
		"stream.retry.delay": true,
		"stream.retry_delay": true,
	}
	found := 0
	for _, v := range got {
		if want[v] {
			found++
		}
	}
	if found != len(want) {
		t.Errorf("variants %v missing some of %v", got, want)
	}
	if v := envKeyVariants("PORT"); len(v) != 1 || v[0] != "port" {
		t.Errorf("single-part key variants = %v", v)
	}
}

// mockFS reports files from a map, or from disk when real is set.
type mockFS struct {
	files map[string]bool
	real  bool
}

func (m *mockFS) Exists(path string) bool {
	if m.real {
		return RealFileSystem{}.Exists(path)
	}
	return m.files[path]
}

func (m *mockFS) LoadEnv(string) error { return nil }
