// Package value defines the decoded JSON-like value space that the
// relationalizer and schema packages both traverse.
package value

import "github.com/goccy/go-json"

// Document is a single top-level record: a string-keyed mapping to Values.
type Document = map[string]any

// A Value is one of: nil, bool, json.Number, string, []any, or map[string]any.
// There is no dedicated Go type for it; callers type-switch on the decoded
// `any` the same way this traversal's source material does.
type Value = any

// Render produces a stable, implementation-specific textual rendering of a
// Value. It backs the stringify_arrays/stringify_objects relationalizer
// options (see internal/relationalizer); downstream systems must not rely
// on byte-for-byte equality with another implementation's rendering.
func Render(v Value) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
