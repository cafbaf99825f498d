// Package checkers provides quicktest checkers shared by the test suites.
package checkers

import (
	"encoding/json"
	"fmt"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

type jsonPathChecker struct {
	path string
}

// JSONPathEquals returns a checker that decodes the got JSON document
// ([]byte or string), selects path from it and compares the selection with
// the want argument using qt.DeepEquals. JSON numbers decode as float64.
//
//	c.Assert(data, checkers.JSONPathEquals("$.bookmarks.foo"), "/home/u/foo")
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{path: path}
}

// ArgNames implements qt.Checker.
func (*jsonPathChecker) ArgNames() []string {
	return []string{"got", "want"}
}

// Check implements qt.Checker.
func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var data []byte
	switch v := got.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		note("got type", fmt.Sprintf("%T", got))
		return qt.BadCheckf("JSON document must be []byte or string")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		note("document", string(data))
		return fmt.Errorf("invalid JSON: %w", err)
	}
	selected, err := jsonpath.Read(doc, c.path)
	if err != nil {
		note("path", c.path)
		return fmt.Errorf("cannot select path: %w", err)
	}
	note("path", c.path)
	return qt.DeepEquals.Check(selected, args, note)
}
