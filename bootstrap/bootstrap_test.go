package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/imagefeed/component"
	"github.com/kbukum/imagefeed/config"
	"github.com/kbukum/imagefeed/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description {
	return component.Description{Name: "HTTP Server", Type: "server", Details: "0.0.0.0:5000", Port: 5000}
}

func (d *describedComponent) Routes() []component.Route {
	return []component.Route{{Method: "GET", Path: "/stream/listen", Handler: "Handlers.Listen"}}
}

func newTestApp(t *testing.T, opts ...Option) (*App[*testConfig], *bytes.Buffer) {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-svc", Version: "1.0.0", Environment: "development"}}
	var out bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "error", Format: logger.FormatJSON}, "test", &bytes.Buffer{})
	opts = append([]Option{WithLogger(log), WithSummaryOutput(&out)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, &out
}

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Name: name, Status: component.StatusHealthy}}
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("name/version = %q/%q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Error("expected registry, logger and summary")
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("default timeout = %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "development"}}
	if _, err := NewApp(cfg); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, _ := newTestApp(t, WithGracefulTimeout(5*time.Second))
	if app.gracefulTimeout != 5*time.Second {
		t.Errorf("timeout = %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app, _ := newTestApp(t)
	if err := app.RegisterComponent(healthy("db")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := app.RegisterComponent(healthy("db")); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestHooks(t *testing.T) {
	var order []string
	hooks := []Hook{
		func(context.Context) error { order = append(order, "first"); return nil },
		func(context.Context) error { return fmt.Errorf("fail") },
		func(context.Context) error { order = append(order, "third"); return nil },
	}
	if err := runHooks(context.Background(), hooks); err == nil {
		t.Error("expected hook error")
	}
	if strings.Join(order, ",") != "first" {
		t.Errorf("hooks after a failure must not run: %v", order)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  component.HealthStatus
		wantErr bool
	}{
		{"healthy", component.StatusHealthy, false},
		{"degraded", component.StatusDegraded, true},
		{"unhealthy", component.StatusUnhealthy, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			app.RegisterComponent(healthy("db"))
			app.RegisterComponent(&mockComponent{name: "redis", health: component.Health{Name: "redis", Status: tc.status, Message: "slow"}})
			if err := app.ReadyCheck(context.Background()); (err != nil) != tc.wantErr {
				t.Errorf("ReadyCheck() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app, out := newTestApp(t)
	c := &describedComponent{mockComponent: *healthy("http-server")}
	app.RegisterComponent(c)

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		if a.Cfg.Name != "test-svc" {
			t.Errorf("cfg name = %q", a.Cfg.Name)
		}
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if got := strings.Join(order, ","); got != "start,configure,ready,task,stop" {
		t.Errorf("order = %s", got)
	}
	if !c.started || !c.stopped {
		t.Error("component should be started and stopped")
	}

	summary := out.String()
	for _, want := range []string{"test-svc 1.0.0", "HTTP Server [server]: 0.0.0.0:5000\n", "/stream/listen", "http-server healthy"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestRunTask_Errors(t *testing.T) {
	t.Run("task error wins", func(t *testing.T) {
		app, _ := newTestApp(t)
		app.RegisterComponent(&mockComponent{name: "db", stopErr: fmt.Errorf("stop failed")})
		err := app.RunTask(context.Background(), func(context.Context) error { return fmt.Errorf("task error") })
		if err == nil || err.Error() != "task error" {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("stop error surfaces", func(t *testing.T) {
		app, _ := newTestApp(t)
		app.RegisterComponent(&mockComponent{name: "db", stopErr: fmt.Errorf("stop failed")})
		err := app.RunTask(context.Background(), func(context.Context) error { return nil })
		if err == nil || !strings.Contains(err.Error(), "stop failed") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("start failure cleans up", func(t *testing.T) {
		app, _ := newTestApp(t)
		first := healthy("db")
		app.RegisterComponent(first)
		app.RegisterComponent(&mockComponent{name: "redis", startErr: fmt.Errorf("refused")})
		ran := false
		err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
		if err == nil || !strings.Contains(err.Error(), "refused") {
			t.Errorf("err = %v", err)
		}
		if ran {
			t.Error("task must not run after a failed start")
		}
		if !first.stopped {
			t.Error("started components must be stopped after a failed start")
		}
	})
}

func TestRunTask_Cancellation(t *testing.T) {
	app, _ := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if err == nil {
		t.Error("expected cancellation error")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	app, _ := newTestApp(t, WithoutSummary())
	c := healthy("sse")
	app.RegisterComponent(c)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !c.stopped {
		t.Error("component should be stopped")
	}
}

func TestWithoutSummary(t *testing.T) {
	app, out := newTestApp(t, WithoutSummary())
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("summary printed: %q", out.String())
	}
}
