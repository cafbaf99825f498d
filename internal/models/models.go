// Package models defines the core data types for the bookmark store.
package models

import (
	"path/filepath"
	"strings"
)

// Bookmark is a named alias for a filesystem directory.
type Bookmark struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// String renders the bookmark in the `name -> path` listing form.
func (b Bookmark) String() string {
	return b.Name + " -> " + b.Path
}

// NameFromPath derives a bookmark name from the final segment of dir.
// It returns "" when dir has no usable final segment (e.g. "/" or ".").
func NameFromPath(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return ""
	}
	return base
}

// ValidName reports whether name can be used as a bookmark key.
// Names are non-empty, carry no surrounding whitespace, and never start with
// '-' so they cannot be confused with a flag on the command line.
func ValidName(name string) bool {
	if name == "" || strings.TrimSpace(name) != name {
		return false
	}
	return !strings.HasPrefix(name, "-")
}
