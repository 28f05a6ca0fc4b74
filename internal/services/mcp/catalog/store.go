package catalog

import "sync/atomic"

// Store holds the current catalog snapshot and lets a reload swap it
// atomically. Readers take a snapshot and keep using it even if a reload
// happens meanwhile.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore returns a store serving initial. A nil initial serves an empty
// catalog.
func NewStore(initial *Catalog) *Store {
	s := &Store{}
	s.Replace(initial)
	return s
}

// Snapshot returns the catalog currently being served.
func (s *Store) Snapshot() *Catalog {
	return s.current.Load()
}

// Replace swaps in next and returns the previous catalog.
func (s *Store) Replace(next *Catalog) *Catalog {
	if next == nil {
		next = New(nil)
	}
	return s.current.Swap(next)
}
