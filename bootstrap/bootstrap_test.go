package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voicemap/component"
	"github.com/kbukum/voicemap/config"
	"github.com/kbukum/voicemap/logger"
)

type testConfig struct {
	config.ServiceConfig
}

func newConfig() *testConfig {
	return &testConfig{ServiceConfig: config.ServiceConfig{Name: "voicemap", Version: "1.0.0"}}
}

type stubComponent struct {
	name     string
	health   component.HealthStatus
	stopErr  error
	started  bool
	stopped  bool
	desc     *component.Description
	routes   []component.Route
	startErr error
}

func (s *stubComponent) Name() string { return s.name }

func (s *stubComponent) Start(context.Context) error {
	s.started = true
	return s.startErr
}

func (s *stubComponent) Stop(context.Context) error {
	s.stopped = true
	return s.stopErr
}

func (s *stubComponent) Health(context.Context) component.Health {
	status := s.health
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: s.name, Status: status}
}

type describedComponent struct {
	*stubComponent
}

func (d describedComponent) Describe() component.Description { return *d.desc }
func (d describedComponent) Routes() []component.Route       { return d.routes }

func newApp(t *testing.T, out io.Writer) *App[*testConfig] {
	t.Helper()
	if out == nil {
		out = io.Discard
	}
	app, err := NewApp(newConfig(), WithLogger(logger.NewDefault()), WithSummaryOutput(out))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newApp(t, nil)
	if app.Name != "voicemap" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied, environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected 15s graceful timeout, got %s", app.gracefulTimeout)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	if _, err := NewApp(&testConfig{}); err == nil {
		t.Error("expected error for a config without a name")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, err := NewApp(newConfig(), WithLogger(logger.NewDefault()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s, got %s", app.gracefulTimeout)
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
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(t, nil)
			_ = app.RegisterComponent(&stubComponent{name: "storage", health: tt.status})
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadyCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartAndShutdown(t *testing.T) {
	app := newApp(t, nil)
	storage := &stubComponent{name: "storage"}
	_ = app.RegisterComponent(storage)

	var ready, stopped bool
	app.OnReady(func(context.Context) error { ready = true; return nil })
	app.OnStop(func(context.Context) error { stopped = true; return nil })

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !storage.started || !ready {
		t.Errorf("started=%v ready=%v", storage.started, ready)
	}
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !storage.stopped || !stopped {
		t.Errorf("stopped=%v hook=%v", storage.stopped, stopped)
	}
}

func TestStart_ComponentFailure(t *testing.T) {
	app := newApp(t, nil)
	_ = app.RegisterComponent(&stubComponent{name: "storage", startErr: errors.New("disk full")})

	err := app.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected start error, got %v", err)
	}
}

func TestStart_ReadyHookFailureStops(t *testing.T) {
	app := newApp(t, nil)
	storage := &stubComponent{name: "storage"}
	_ = app.RegisterComponent(storage)
	app.OnReady(func(context.Context) error { return errors.New("warmup failed") })

	if err := app.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !storage.stopped {
		t.Error("components should be stopped after a failed ready hook")
	}
}

func TestShutdown_ReportsErrors(t *testing.T) {
	app := newApp(t, nil)
	_ = app.RegisterComponent(&stubComponent{name: "storage", stopErr: errors.New("flush failed")})
	if err := app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := app.Shutdown(); err == nil {
		t.Error("expected stop error")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := newApp(t, nil)
	storage := &stubComponent{name: "storage"}
	_ = app.RegisterComponent(storage)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !storage.stopped {
		t.Error("expected storage to be stopped")
	}
}

func TestSummary(t *testing.T) {
	var out bytes.Buffer
	app := newApp(t, &out)
	server := describedComponent{&stubComponent{
		name: "http-server",
		desc: &component.Description{Name: "HTTP Server", Type: "server", Details: "0.0.0.0:5000", Port: 5000},
		routes: []component.Route{
			{Method: "POST", Path: "/api/upload", Handler: "Handler.Upload"},
			{Method: "GET", Path: "/health", Handler: "endpoint.Health"},
		},
	}}
	_ = app.RegisterComponent(&stubComponent{name: "storage", health: component.StatusDegraded})
	_ = app.RegisterComponent(server)

	if err := app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer app.Shutdown()

	got := out.String()
	for _, want := range []string{
		"voicemap v1.0.0",
		"HTTP Server: 0.0.0.0:5000 (:5000)",
		"Routes (2)",
		"/api/upload",
		"storage: degraded",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestSummary_NoComponents(t *testing.T) {
	var out bytes.Buffer
	s := NewSummary("voicemap", "dev")
	s.out = &out
	s.DisplaySummary(context.Background(), nil)
	if !strings.Contains(out.String(), "No components registered") {
		t.Errorf("unexpected summary: %s", out.String())
	}
}

func TestHealthStatusIcon(t *testing.T) {
	tests := map[component.HealthStatus]string{
		component.StatusHealthy:   "✅",
		component.StatusDegraded:  "⚠️",
		component.StatusUnhealthy: "❌",
		"unknown":                 "❓",
	}
	for status, icon := range tests {
		if got := healthStatusIcon(status); got != icon {
			t.Errorf("healthStatusIcon(%q) = %q, want %q", status, got, icon)
		}
	}
}
