// Package service implements the bookmark service that wires together
// configuration, the storage backend and the in-memory store.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-ports/dm/internal/config"
	"github.com/go-ports/dm/internal/db"
	"github.com/go-ports/dm/internal/models"
	"github.com/go-ports/dm/internal/store"
)

var (
	// ErrInvalidName is returned when a bookmark name is empty or unusable.
	ErrInvalidName = errors.New("invalid bookmark name")
	// ErrInvalidPath is returned when a bookmark path is empty or blank.
	ErrInvalidPath = errors.New("invalid bookmark path")
	// ErrNoBaseName is returned when a directory has no final path segment
	// to derive a bookmark name from (for example "/").
	ErrNoBaseName = errors.New("cannot derive a bookmark name from directory")
)

// backupper is implemented by backends that can move an unreadable store aside.
type backupper interface {
	Backup() (string, error)
}

// saveStamper is implemented by backends that know when they were last written.
type saveStamper interface {
	LastSaved() (string, bool, error)
}

// rowStore is implemented by backends that can persist a single entry
// without rewriting the whole store.
type rowStore interface {
	Upsert(name, path string) error
	Delete(name string) (bool, error)
}

// Service orchestrates all bookmark operations. Mutations are persisted
// before they return.
type Service struct {
	Home   string
	Config *config.Config

	backend store.Backend
	store   *store.Store
	mu      sync.Mutex
}

// New initialises a Service rooted at home.
// If home is empty it is resolved via config.ResolveHome.
func New(home string) (*Service, error) {
	if home == "" {
		resolved, _, err := config.ResolveHome()
		if err != nil {
			return nil, fmt.Errorf("service.New: %w", err)
		}
		home = resolved
	}

	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("service.New: create home: %w", err)
	}

	cfgPath := filepath.Join(home, config.FileName)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("service.New: load config: %w", err)
	}

	backend, err := openBackend(home, cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}
	slog.Debug("opened bookmark backend", "backend", cfg.Backend, "location", backend.Location())

	s, err := backend.Load()
	switch {
	case errors.Is(err, store.ErrCorrupt) && cfg.RecoverCorrupt:
		s, err = recoverCorrupt(backend, err)
		if err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("service.New: %w", err)
		}
	case errors.Is(err, store.ErrCorrupt):
		_ = backend.Close()
		return nil, fmt.Errorf("service.New: %w (fix or remove the file, or set recover_corrupt: true in %s)", err, cfgPath)
	case err != nil:
		_ = backend.Close()
		return nil, fmt.Errorf("service.New: %w", err)
	}

	return &Service{
		Home:    home,
		Config:  cfg,
		backend: backend,
		store:   s,
	}, nil
}

func openBackend(home, kind string) (store.Backend, error) {
	switch kind {
	case config.BackendSQLite:
		d, err := db.Open(filepath.Join(home, db.DataFile))
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.BackendJSON, "":
		return store.OpenJSON(filepath.Join(home, store.DataFile)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// recoverCorrupt moves an unreadable store aside and continues with an empty one.
func recoverCorrupt(backend store.Backend, loadErr error) (*store.Store, error) {
	b, ok := backend.(backupper)
	if !ok {
		return nil, loadErr
	}
	dst, err := b.Backup()
	if err != nil {
		return nil, err
	}
	slog.Warn("bookmark store was unreadable; starting empty",
		"location", backend.Location(), "backup", dst, "err", loadErr)
	return store.New(), nil
}

// Close releases all resources held by the service.
func (s *Service) Close() error {
	return s.backend.Close()
}

// LastSaved reports when the store was last persisted, in RFC 3339 UTC.
// It reports false when nothing has been written yet or the backend does
// not track it.
func (s *Service) LastSaved() (string, bool, error) {
	st, ok := s.backend.(saveStamper)
	if !ok {
		return "", false, nil
	}
	return st.LastSaved()
}

// Location returns where the bookmarks are persisted.
func (s *Service) Location() string {
	return s.backend.Location()
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Add stores path under name, replacing any existing entry, and persists the
// store. path is made absolute but not checked for existence.
func (s *Service) Add(name, path string) (models.Bookmark, error) {
	if !models.ValidName(name) {
		return models.Bookmark{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	abs, err := absPath(path)
	if err != nil {
		return models.Bookmark{}, fmt.Errorf("service.Add: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.store.Lookup(name)
	s.store.Insert(name, abs)
	if err := s.persistPut(name, abs); err != nil {
		if existed {
			s.store.Insert(name, prev)
		} else {
			s.store.Remove(name)
		}
		return models.Bookmark{}, fmt.Errorf("service.Add: %w", err)
	}
	if existed && prev != abs {
		slog.Info("bookmark overwritten", "name", name, "old", prev, "new", abs)
	}
	return models.Bookmark{Name: name, Path: abs}, nil
}

// AddDir bookmarks dir. When name is empty it is derived from the final
// segment of dir.
func (s *Service) AddDir(dir, name string) (models.Bookmark, error) {
	if name == "" {
		name = models.NameFromPath(dir)
		if name == "" {
			return models.Bookmark{}, fmt.Errorf("%w %q", ErrNoBaseName, dir)
		}
	}
	return s.Add(name, dir)
}

// Remove deletes name. It persists only when something was removed and
// reports whether the bookmark existed.
func (s *Service) Remove(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.store.Lookup(name)
	if !ok {
		return false, nil
	}
	s.store.Remove(name)
	if err := s.persistDelete(name); err != nil {
		s.store.Insert(name, prev)
		return false, fmt.Errorf("service.Remove: %w", err)
	}
	return true, nil
}

// absPath rejects empty or blank paths, which filepath.Abs would silently
// turn into the working directory.
func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return filepath.Abs(path)
}

func (s *Service) persistPut(name, path string) error {
	if rs, ok := s.backend.(rowStore); ok {
		return rs.Upsert(name, path)
	}
	return s.backend.Save(s.store)
}

func (s *Service) persistDelete(name string) error {
	if rs, ok := s.backend.(rowStore); ok {
		_, err := rs.Delete(name)
		return err
	}
	return s.backend.Save(s.store)
}

// Lookup returns the path bookmarked under name.
func (s *Service) Lookup(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Lookup(name)
}

// List returns all bookmarks ordered by name.
func (s *Service) List() []models.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

// Names returns all bookmark names in ascending order.
func (s *Service) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Names()
}

// Import inserts every entry and persists once. Either all entries are
// stored or, on error, none are.
func (s *Service) Import(entries map[string]string) (int, error) {
	resolved := make(map[string]string, len(entries))
	for name, path := range entries {
		if !models.ValidName(name) {
			return 0, fmt.Errorf("service.Import: %w: %q", ErrInvalidName, name)
		}
		abs, err := absPath(path)
		if err != nil {
			return 0, fmt.Errorf("service.Import %q: %w", name, err)
		}
		resolved[name] = abs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Map()
	for name, path := range resolved {
		s.store.Insert(name, path)
	}
	if err := s.backend.Save(s.store); err != nil {
		s.store = store.FromMap(before)
		return 0, fmt.Errorf("service.Import: %w", err)
	}
	return len(resolved), nil
}
