package state

import (
	"sort"
	"time"
)

// MemoryStore is an in-memory Store for tests. It can be made to fail
// writes to exercise the fatal path.
type MemoryStore struct {
	markers  map[string]time.Time
	failSets bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{markers: make(map[string]time.Time)}
}

// FailWrites makes every subsequent Set return ErrUnwritable.
func (s *MemoryStore) FailWrites() {
	s.failSets = true
}

// Has reports whether a completion marker exists for the key.
func (s *MemoryStore) Has(key string) bool {
	_, ok := s.markers[key]
	return ok
}

// Set records completion for the key.
func (s *MemoryStore) Set(key string) error {
	if s.failSets {
		return ErrUnwritable
	}
	if _, ok := s.markers[key]; ok {
		return nil
	}
	s.markers[key] = time.Now()
	return nil
}

// Clear removes the marker for the key.
func (s *MemoryStore) Clear(key string) error {
	delete(s.markers, key)
	return nil
}

// Markers returns all recorded completions, sorted by key.
func (s *MemoryStore) Markers() ([]Marker, error) {
	markers := make([]Marker, 0, len(s.markers))
	for key, at := range s.markers {
		markers = append(markers, Marker{Key: key, CompletedAt: at})
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].Key < markers[j].Key })
	return markers, nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
