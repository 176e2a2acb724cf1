package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/kbukum/voicemap/embedding"
	"github.com/kbukum/voicemap/encryption"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	sealer, err := encryption.New("test", encryption.AlgorithmChaCha20)
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	return NewRegistry(sealer)
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r := newRegistry(t)
	s := r.Create()
	if s.ID == "" {
		t.Fatal("expected a session id")
	}
	got, err := r.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != s {
		t.Error("expected the same session")
	}
	if s.Store == nil || s.Store.Len() != 0 {
		t.Error("expected an empty store")
	}
}

func TestRegistry_UnknownSession(t *testing.T) {
	r := newRegistry(t)
	for _, id := range []string{"", "does-not-exist"} {
		if _, err := r.Get(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q): expected ErrNotFound, got %v", id, err)
		}
	}
	if r.Len() != 0 {
		t.Error("Get must not create sessions")
	}
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	r := newRegistry(t)
	a, b := r.Create(), r.Create()
	if a.ID == b.ID {
		t.Fatal("expected distinct ids")
	}

	_ = a.Store.Upsert(embedding.Entry{ID: "seg", Speaker: "S", Vector: []float32{1}, Start: 0, End: 1})
	_ = b.Store.Upsert(embedding.Entry{ID: "seg", Speaker: "T", Vector: []float32{1, 2}, Start: 0, End: 1})
	b.Store.Relabel(map[string]string{"seg": "X"})

	ea, _ := a.Store.Get("seg")
	if ea.Speaker != "S" || len(ea.Vector) != 1 {
		t.Errorf("session a affected by session b: %+v", ea)
	}
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	r := newRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := r.Create()
			if _, err := r.Get(s.ID); err != nil {
				t.Errorf("Get after Create: %v", err)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 50 {
		t.Errorf("expected 50 sessions, got %d", r.Len())
	}
}

func TestSession_RecordUpload(t *testing.T) {
	r := newRegistry(t)
	s := r.Create()

	if _, err := s.Audio(); !errors.Is(err, ErrNoUpload) {
		t.Errorf("expected ErrNoUpload before upload, got %v", err)
	}
	if _, err := s.Token(); !errors.Is(err, ErrNoUpload) {
		t.Errorf("expected ErrNoUpload before upload, got %v", err)
	}

	audio := Audio{Key: s.ID + "_meeting.wav", Name: "meeting.wav", MediaRef: "media://meeting.wav"}
	if err := s.RecordUpload(audio, "sk-123"); err != nil {
		t.Fatalf("RecordUpload failed: %v", err)
	}
	got, err := s.Audio()
	if err != nil || got != audio {
		t.Errorf("unexpected audio %+v (%v)", got, err)
	}
	token, err := s.Token()
	if err != nil || token != "sk-123" {
		t.Errorf("unexpected token %q (%v)", token, err)
	}
	if s.sealedToken == "sk-123" {
		t.Error("token must not be held in clear")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := newRegistry(t)
	s := r.Create()
	r.Remove(s.ID)
	if _, err := r.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after Remove, got %v", err)
	}
	r.Remove("never-existed")
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}
