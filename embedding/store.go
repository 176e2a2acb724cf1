package embedding

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// dimension fixed by the first entry of the store.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Store is an ordered, upsert-only collection of entries. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	revs    []uint64
	index   map[string]int
	dim     int
	clock   uint64
}

// Snapshot is a copy of the store taken by Snapshot. It remembers the
// revision of every entry so RelabelSnapshot can skip entries upserted since.
type Snapshot struct {
	Entries []Entry
	revs    []uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Upsert inserts e, or replaces the entry with the same id in place.
func (s *Store) Upsert(e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim != 0 && len(e.Vector) != s.dim {
		return fmt.Errorf("%w: entry %s has %d components, store holds %d",
			ErrDimensionMismatch, e.ID, len(e.Vector), s.dim)
	}

	e = e.clone()
	s.clock++
	if i, ok := s.index[e.ID]; ok {
		s.entries[i] = e
		s.revs[i] = s.clock
		return nil
	}
	if s.dim == 0 {
		s.dim = len(e.Vector)
	}
	s.index[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)
	s.revs = append(s.revs, s.clock)
	return nil
}

// All returns a deep copy of the entries in insertion order.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Relabel sets the speaker of every entry named in mapping. Ids the store
// does not hold are ignored. It returns the number of entries changed.
func (s *Store) Relabel(mapping map[string]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, speaker := range mapping {
		if i, ok := s.index[id]; ok {
			s.entries[i].Speaker = speaker
			n++
		}
	}
	return n
}

// Snapshot returns a deep copy of the entries in insertion order together
// with their revisions.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Entries: make([]Entry, len(s.entries)), revs: slices.Clone(s.revs)}
	for i, e := range s.entries {
		snap.Entries[i] = e.clone()
	}
	return snap
}

// RelabelSnapshot applies mapping like Relabel, but only to entries that have
// not been upserted since snap was taken. A replaced entry keeps the speaker
// it was written with.
func (s *Store) RelabelSnapshot(snap Snapshot, mapping map[string]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i, e := range snap.Entries {
		speaker, ok := mapping[e.ID]
		if !ok || s.revs[i] != snap.revs[i] {
			continue
		}
		s.entries[i].Speaker = speaker
		n++
	}
	return n
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i].clone(), true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dimension returns the vector length shared by all entries, or 0 when empty.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}
