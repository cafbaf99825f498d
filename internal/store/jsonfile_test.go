package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/dm/internal/store"
)

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestJSONLoad_FreshStart(t *testing.T) {
	c := qt.New(t)

	c.Run("missing directory is created and store is empty", func(c *qt.C) {
		dir := filepath.Join(t.TempDir(), ".dm")
		f := store.OpenJSON(filepath.Join(dir, store.DataFile))

		s, err := f.Load()
		c.Assert(err, qt.IsNil)
		c.Assert(s.Len(), qt.Equals, 0)

		info, err := os.Stat(dir)
		c.Assert(err, qt.IsNil)
		c.Assert(info.IsDir(), qt.IsTrue)
	})

	c.Run("empty file yields empty store", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), store.DataFile)
		c.Assert(os.WriteFile(path, nil, 0o600), qt.IsNil)

		s, err := store.OpenJSON(path).Load()
		c.Assert(err, qt.IsNil)
		c.Assert(s.Len(), qt.Equals, 0)
	})

	c.Run("null bookmarks field yields empty store", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), store.DataFile)
		c.Assert(os.WriteFile(path, []byte(`{"bookmarks": null}`), 0o600), qt.IsNil)

		s, err := store.OpenJSON(path).Load()
		c.Assert(err, qt.IsNil)
		c.Assert(s.Len(), qt.Equals, 0)
	})
}

func TestJSONLoad_CorruptFile(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"truncated document", `{"bookmarks": {"foo": "/fo`},
		{"wrong value type", `{"bookmarks": {"foo": 42}}`},
		{"top-level array", `["foo"]`},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			path := filepath.Join(t.TempDir(), store.DataFile)
			c.Assert(os.WriteFile(path, []byte(tc.content), 0o600), qt.IsNil)

			s, err := store.OpenJSON(path).Load()
			c.Assert(err, qt.ErrorIs, store.ErrCorrupt)
			c.Assert(s, qt.IsNotNil)
			c.Assert(s.Len(), qt.Equals, 0)

			// The corrupt file is left untouched for the caller to deal with.
			data, readErr := os.ReadFile(path)
			c.Assert(readErr, qt.IsNil)
			c.Assert(string(data), qt.Equals, tc.content)
		})
	}
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestJSONSave_RoundTrip(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name    string
		entries map[string]string
	}{
		{"empty", map[string]string{}},
		{"single", map[string]string{"foo": "/home/u/projects/foo"}},
		{"several with odd characters", map[string]string{
			"foo":        "/home/u/projects/foo",
			"with space": "/tmp/with space",
			"ünï":        "/srv/ünï",
			"quote\"d":   `/tmp/quote"d`,
		}},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			f := store.OpenJSON(filepath.Join(t.TempDir(), "nested", store.DataFile))
			c.Assert(f.Save(store.FromMap(tc.entries)), qt.IsNil)

			got, err := f.Load()
			c.Assert(err, qt.IsNil)
			c.Assert(got.Map(), qt.DeepEquals, tc.entries)
		})
	}
}

func TestJSONSave_HumanReadable(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), store.DataFile)
	f := store.OpenJSON(path)

	c.Assert(f.Save(store.FromMap(map[string]string{"b": "/b", "a": "/a"})), qt.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "{\n  \"bookmarks\": {\n    \"a\": \"/a\",\n    \"b\": \"/b\"\n  }\n}\n")
}

func TestJSONSave_OverwritesWholesale(t *testing.T) {
	c := qt.New(t)
	f := store.OpenJSON(filepath.Join(t.TempDir(), store.DataFile))

	c.Assert(f.Save(store.FromMap(map[string]string{"a": "/a", "b": "/b"})), qt.IsNil)
	c.Assert(f.Save(store.FromMap(map[string]string{"c": "/c"})), qt.IsNil)

	got, err := f.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Map(), qt.DeepEquals, map[string]string{"c": "/c"})
}

func TestJSONSave_LeavesNoTempFiles(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	f := store.OpenJSON(filepath.Join(dir, store.DataFile))

	for i := 0; i < 3; i++ {
		c.Assert(f.Save(store.FromMap(map[string]string{"a": "/a"})), qt.IsNil)
	}

	entries, err := os.ReadDir(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].Name(), qt.Equals, store.DataFile)
}

func TestJSONSave_FailurePath(t *testing.T) {
	c := qt.New(t)

	// A regular file where the home directory should be makes MkdirAll fail.
	parent := filepath.Join(t.TempDir(), "blocker")
	c.Assert(os.WriteFile(parent, []byte("x"), 0o600), qt.IsNil)

	f := store.OpenJSON(filepath.Join(parent, store.DataFile))
	err := f.Save(store.New())
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Contains, "store.Save")

	_, err = f.Load()
	c.Assert(err, qt.IsNotNil)
}

// ---------------------------------------------------------------------------
// Backup
// ---------------------------------------------------------------------------

func TestJSONBackup(t *testing.T) {
	c := qt.New(t)

	c.Run("corrupt file is moved aside", func(c *qt.C) {
		dir := t.TempDir()
		path := filepath.Join(dir, store.DataFile)
		c.Assert(os.WriteFile(path, []byte("garbage"), 0o600), qt.IsNil)

		dst, err := store.OpenJSON(path).Backup()
		c.Assert(err, qt.IsNil)
		c.Assert(strings.HasPrefix(filepath.Base(dst), store.DataFile+".corrupt-"), qt.IsTrue)

		_, err = os.Stat(path)
		c.Assert(os.IsNotExist(err), qt.IsTrue)
		data, err := os.ReadFile(dst)
		c.Assert(err, qt.IsNil)
		c.Assert(string(data), qt.Equals, "garbage")
	})

	c.Run("missing file is a no-op", func(c *qt.C) {
		dst, err := store.OpenJSON(filepath.Join(t.TempDir(), store.DataFile)).Backup()
		c.Assert(err, qt.IsNil)
		c.Assert(dst, qt.Equals, "")
	})
}

func TestJSONLocation(t *testing.T) {
	c := qt.New(t)
	f := store.OpenJSON("/x/data.json")
	c.Assert(f.Location(), qt.Equals, "/x/data.json")
	c.Assert(f.Close(), qt.IsNil)
}
