package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/dm/internal/fsutil"
)

func TestWriteFileAtomic_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Run("creates missing directories", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), "a", "b", "config.yaml")
		c.Assert(fsutil.WriteFileAtomic(path, []byte("x: 1\n"), 0o600), qt.IsNil)

		data, err := os.ReadFile(path)
		c.Assert(err, qt.IsNil)
		c.Assert(string(data), qt.Equals, "x: 1\n")

		info, err := os.Stat(path)
		c.Assert(err, qt.IsNil)
		c.Assert(info.Mode().Perm(), qt.Equals, os.FileMode(0o600))
	})

	c.Run("replaces existing content and leaves no temp files", func(c *qt.C) {
		dir := t.TempDir()
		path := filepath.Join(dir, "data.json")
		c.Assert(os.WriteFile(path, []byte("old content that is longer"), 0o600), qt.IsNil)

		c.Assert(fsutil.WriteFileAtomic(path, []byte("new"), 0o600), qt.IsNil)

		data, err := os.ReadFile(path)
		c.Assert(err, qt.IsNil)
		c.Assert(string(data), qt.Equals, "new")

		entries, err := os.ReadDir(dir)
		c.Assert(err, qt.IsNil)
		c.Assert(entries, qt.HasLen, 1)
	})
}

func TestWriteFileAtomic_FailurePath(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	// A non-empty directory at the target makes the final rename fail.
	c.Assert(os.MkdirAll(filepath.Join(path, "block"), 0o755), qt.IsNil)

	err := fsutil.WriteFileAtomic(path, []byte("x"), 0o600)
	c.Assert(err, qt.ErrorMatches, "rename: .*")

	entries, err := os.ReadDir(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 1)
}
