// Package store holds the in-memory bookmark mapping and the backends that
// persist it.
package store

import (
	"errors"
	"maps"
	"slices"

	"github.com/go-ports/dm/internal/models"
)

// ErrCorrupt is returned by a Backend when persisted data exists but cannot
// be decoded. The accompanying *Store is empty and safe to use.
var ErrCorrupt = errors.New("bookmark store is corrupt")

// Backend loads and saves a whole Store.
type Backend interface {
	// Load materializes the persisted store. A missing store is not an error.
	Load() (*Store, error)
	// Save replaces the persisted store with s.
	Save(s *Store) error
	// Location describes where the store lives, for messages and logs.
	Location() string
	Close() error
}

// Store maps bookmark names to directory paths.
type Store struct {
	entries map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// FromMap builds a Store holding a copy of m.
func FromMap(m map[string]string) *Store {
	s := New()
	for k, v := range m {
		s.entries[k] = v
	}
	return s
}

// Insert sets the path for name, replacing any previous value.
func (s *Store) Insert(name, path string) {
	s.entries[name] = path
}

// Remove deletes name and reports whether it was present.
func (s *Store) Remove(name string) bool {
	if _, ok := s.entries[name]; !ok {
		return false
	}
	delete(s.entries, name)
	return true
}

// Lookup returns the path stored under name.
func (s *Store) Lookup(name string) (string, bool) {
	p, ok := s.entries[name]
	return p, ok
}

// Len returns the number of bookmarks.
func (s *Store) Len() int { return len(s.entries) }

// Names returns all bookmark names in ascending order.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.entries))
}

// List returns every bookmark ordered by name.
func (s *Store) List() []models.Bookmark {
	names := s.Names()
	out := make([]models.Bookmark, 0, len(names))
	for _, n := range names {
		out = append(out, models.Bookmark{Name: n, Path: s.entries[n]})
	}
	return out
}

// Map returns a copy of the underlying mapping. It is never nil.
func (s *Store) Map() map[string]string {
	return maps.Clone(s.entries)
}
