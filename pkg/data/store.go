package data

import "sync"

// Store holds the currently loaded dataset. It is set wholesale when a new
// dataset loads and read through Snapshot, so an in-flight query keeps seeing
// the dataset it started with even if a replacement lands mid-query.
type Store struct {
	mu      sync.RWMutex
	current *Dataset
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the active dataset. The caller must not mutate ds afterwards.
func (s *Store) Set(ds Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &ds
}

// Clear drops the active dataset.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Snapshot returns the active dataset, or false when none has been loaded.
// The returned dataset is shared and must be treated as read-only.
func (s *Store) Snapshot() (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Loaded reports whether a dataset is present.
func (s *Store) Loaded() bool {
	_, ok := s.Snapshot()
	return ok
}
