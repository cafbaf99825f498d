package checkers_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/dm/internal/checkers"
)

func TestJSONPathEquals_HappyPath(t *testing.T) {
	c := qt.New(t)
	doc := []byte(`{"bookmarks": {"foo": "/home/u/foo"}, "list": ["a", "b"], "n": 2}`)

	c.Assert(doc, checkers.JSONPathEquals("$.bookmarks.foo"), "/home/u/foo")
	c.Assert(string(doc), checkers.JSONPathEquals("$.list"), []any{"a", "b"})
	c.Assert(doc, checkers.JSONPathEquals("$.n"), float64(2))
}

func TestJSONPathEquals_FailurePath(t *testing.T) {
	c := qt.New(t)
	note := func(string, any) {}
	checker := checkers.JSONPathEquals("$.bookmarks.foo")

	c.Run("value differs", func(c *qt.C) {
		err := checker.Check([]byte(`{"bookmarks": {"foo": "/x"}}`), []any{"/y"}, note)
		c.Assert(err, qt.IsNotNil)
	})

	c.Run("invalid JSON", func(c *qt.C) {
		err := checker.Check([]byte(`{`), []any{"/y"}, note)
		c.Assert(err, qt.ErrorMatches, "invalid JSON.*")
	})

	c.Run("missing path", func(c *qt.C) {
		err := checker.Check([]byte(`{"other": 1}`), []any{"/y"}, note)
		c.Assert(err, qt.IsNotNil)
	})

	c.Run("unsupported got type", func(c *qt.C) {
		err := checker.Check(42, []any{"/y"}, note)
		c.Assert(qt.IsBadCheck(err), qt.IsTrue)
	})
}
