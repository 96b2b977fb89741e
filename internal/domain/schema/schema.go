package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrAttributeNotAllowed = errors.New("attribute not allowed")

type Attribute struct {
	AllowPost bool
	AllowPut  bool
	IsVisible bool
}

// Map is collection name → attribute name → Attribute.
type Map map[string]map[string]Attribute

// Merge returns a new Map holding base overlaid by each extension in order.
// None of the inputs is modified.
func Merge(base Map, exts ...Map) Map {
	out := make(Map, len(base))
	for _, m := range append([]Map{base}, exts...) {
		for collection, attrs := range m {
			merged, ok := out[collection]
			if !ok {
				merged = make(map[string]Attribute, len(attrs))
				out[collection] = merged
			}
			for name, attr := range attrs {
				merged[name] = attr
			}
		}
	}
	return out
}

func (m Map) Has(collection string) bool {
	_, ok := m[collection]
	return ok
}

// CheckUpdate rejects body keys that the collection does not allow on update.
func (m Map) CheckUpdate(collection string, body map[string]any) error {
	attrs, ok := m[collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}
	var bad []string
	for key := range body {
		if attr, ok := attrs[key]; !ok || !attr.AllowPut {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("%w: cannot update %v on %s", ErrAttributeNotAllowed, bad, collection)
	}
	return nil
}

// Render converts v to its JSON object form restricted to the visible attributes of
// collection. A non-empty fields list narrows the result further.
func (m Map) Render(collection string, v any, fields []string) (map[string]any, error) {
	attrs, ok := m[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", collection, err)
	}
	var full map[string]any
	if err := json.Unmarshal(raw, &full); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", collection, err)
	}

	want := make(map[string]bool, len(fields))
	for _, f := range fields {
		want[f] = true
	}

	out := make(map[string]any, len(attrs))
	for key, val := range full {
		attr, ok := attrs[key]
		if !ok || !attr.IsVisible {
			continue
		}
		if len(want) > 0 && !want[key] {
			continue
		}
		out[key] = val
	}
	return out, nil
}

// RenderList applies Render to each element of a slice.
func RenderList[T any](m Map, collection string, items []T, fields []string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		r, err := m.Render(collection, item, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ParseFields flattens repeated and comma-separated field selectors, dropping blanks.
func ParseFields(values []string) []string {
	var fields []string
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}
	return fields
}
