package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-ports/dm/internal/fsutil"
)

// DataFile is the file name of the JSON store inside the dm home directory.
const DataFile = "data.json"

// document is the on-disk shape of the JSON store.
type document struct {
	Bookmarks map[string]string `json:"bookmarks"`
}

// JSONFile persists a Store as a single human-readable JSON document.
type JSONFile struct {
	path string
}

// OpenJSON returns a JSONFile backend for path. Nothing is read until Load.
func OpenJSON(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Location returns the path of the JSON document.
func (f *JSONFile) Location() string { return f.path }

// Close is a no-op; JSONFile holds no open handles between calls.
func (*JSONFile) Close() error { return nil }

// Load reads the whole document. The containing directory is created when it
// does not exist, and a missing or blank file yields an empty Store.
// Undecodable content yields an empty Store together with an error wrapping
// ErrCorrupt.
func (f *JSONFile) Load() (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return nil, fmt.Errorf("store.Load: create dir: %w", err)
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store.Load: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return New(), fmt.Errorf("store.Load %s: %w: %v", f.path, ErrCorrupt, err)
	}
	return FromMap(doc.Bookmarks), nil
}

// Save writes s to a temporary file next to the target and renames it into
// place, so readers observe either the old or the new document.
func (f *JSONFile) Save(s *Store) error {
	data, err := json.MarshalIndent(document{Bookmarks: s.Map()}, "", "  ")
	if err != nil {
		return fmt.Errorf("store.Save: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}
	return nil
}

// LastSaved returns the modification time of the document in RFC 3339 UTC.
// It reports false when the document has never been written.
func (f *JSONFile) LastSaved() (string, bool, error) {
	info, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store.LastSaved: %w", err)
	}
	return info.ModTime().UTC().Format(time.RFC3339), true, nil
}

// Backup moves the current document aside as <path>.corrupt-<unix-seconds>
// and returns the new path. It returns ("", nil) if there is nothing to move.
func (f *JSONFile) Backup() (string, error) {
	dst := f.path + ".corrupt-" + strconv.FormatInt(time.Now().Unix(), 10)
	err := os.Rename(f.path, dst)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store.Backup: %w", err)
	}
	return dst, nil
}
