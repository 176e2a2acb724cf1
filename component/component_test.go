package component

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recorder struct {
	events []string
}

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	rec      *recorder
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	f.rec.events = append(f.rec.events, "start:"+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	f.rec.events = append(f.rec.events, "stop:"+f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health {
	if f.startErr != nil {
		return Unhealthy(f.name, f.startErr.Error())
	}
	return Healthy(f.name)
}

func newRegistry(t *testing.T, rec *recorder, comps ...*fakeComponent) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, c := range comps {
		c.rec = rec
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s): %v", c.name, err)
		}
	}
	return r
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	r := newRegistry(t, &recorder{}, &fakeComponent{name: "storage"})
	if err := r.Register(&fakeComponent{name: "storage"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	r := newRegistry(t, rec,
		&fakeComponent{name: "storage"},
		&fakeComponent{name: "explorer"},
		&fakeComponent{name: "http-server"},
	)

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := "start:storage start:explorer start:http-server stop:http-server stop:explorer stop:storage"
	if got := strings.Join(rec.events, " "); got != want {
		t.Errorf("events = %q\nwant     %q", got, want)
	}
}

func TestStartAll_RollsBack(t *testing.T) {
	rec := &recorder{}
	r := newRegistry(t, rec,
		&fakeComponent{name: "storage"},
		&fakeComponent{name: "explorer", startErr: errors.New("no provider")},
		&fakeComponent{name: "http-server"},
	)

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "explorer") {
		t.Fatalf("expected explorer start error, got %v", err)
	}
	want := "start:storage start:explorer stop:storage"
	if got := strings.Join(rec.events, " "); got != want {
		t.Errorf("events = %q, want %q", got, want)
	}

	// Nothing is left running, so a later StopAll is a no-op.
	rec.events = nil
	if err := r.StopAll(context.Background()); err != nil {
		t.Errorf("StopAll: %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("expected no stop calls, got %v", rec.events)
	}
}

func TestStopAll_ContinuesAfterError(t *testing.T) {
	rec := &recorder{}
	r := newRegistry(t, rec,
		&fakeComponent{name: "storage"},
		&fakeComponent{name: "http-server", stopErr: errors.New("busy")},
	)
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}

	err := r.StopAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "http-server") {
		t.Errorf("expected http-server stop error, got %v", err)
	}
	if rec.events[len(rec.events)-1] != "stop:storage" {
		t.Errorf("storage should still be stopped, events %v", rec.events)
	}
}

func TestHealthAll(t *testing.T) {
	r := newRegistry(t, &recorder{},
		&fakeComponent{name: "storage"},
		&fakeComponent{name: "explorer", startErr: errors.New("down")},
	)
	got := r.HealthAll(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Status != StatusHealthy || got[1].Status != StatusUnhealthy || got[1].Message != "down" {
		t.Errorf("unexpected health %+v", got)
	}
}

func TestAll_PreservesOrder(t *testing.T) {
	r := newRegistry(t, &recorder{}, &fakeComponent{name: "a"}, &fakeComponent{name: "b"})
	all := r.All()
	if len(all) != 2 || all[0].Name() != "a" || all[1].Name() != "b" {
		t.Errorf("unexpected order %v", all)
	}
}
