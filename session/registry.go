package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/voicemap/embedding"
	"github.com/kbukum/voicemap/encryption"
)

// ErrNotFound is returned for an id the registry does not hold.
var ErrNotFound = errors.New("session not found")

// Registry maps session ids to sessions.
type Registry struct {
	sealer *encryption.Sealer
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry whose sessions seal their
// credentials with sealer.
func NewRegistry(sealer *encryption.Sealer) *Registry {
	return &Registry{
		sealer:   sealer,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new empty session under a fresh random id.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: r.now(),
		Store:     embedding.NewStore(),
		sealer:    r.sealer,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session. It never creates one.
func (r *Registry) Get(id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove forgets a session. It is used to discard a session whose upload
// did not complete; live sessions are never evicted.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
