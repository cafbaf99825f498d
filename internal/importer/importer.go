// Package importer extracts bookmark entries from arbitrary JSON documents.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yalp/jsonpath"
)

// ErrShape is returned when the selected JSON value is not a set of bookmarks.
var ErrShape = errors.New("unsupported bookmark shape")

// Parse decodes data and returns the name → path entries found at selector.
//
// selector is a JSONPath expression such as "$.bookmarks" or "$.dirs[*]".
// When selector is empty the document itself is used, unless it is an object
// with a "bookmarks" object member (the dm data.json layout), in which case
// that member is used.
//
// The selected value may be an object mapping names to path strings, or an
// array of {"name": ..., "path": ...} objects.
func Parse(data []byte, selector string) (map[string]string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("importer.Parse: %w", err)
	}

	selected := doc
	if selector != "" {
		v, err := jsonpath.Read(doc, selector)
		if err != nil {
			return nil, fmt.Errorf("importer.Parse: select %q: %w", selector, err)
		}
		selected = v
	} else if obj, ok := doc.(map[string]any); ok {
		if inner, ok := obj["bookmarks"].(map[string]any); ok {
			selected = inner
		}
	}

	return entries(selected)
}

func entries(v any) (map[string]string, error) {
	out := make(map[string]string)
	switch t := v.(type) {
	case map[string]any:
		for name, raw := range t {
			path, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: value for %q is %T, want string", ErrShape, name, raw)
			}
			out[name] = path
		}
	case []any:
		for i, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, want object", ErrShape, i, item)
			}
			name, _ := obj["name"].(string)
			path, _ := obj["path"].(string)
			if name == "" || path == "" {
				return nil, fmt.Errorf("%w: element %d needs string name and path", ErrShape, i)
			}
			out[name] = path
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrShape, v)
	}
	return out, nil
}
