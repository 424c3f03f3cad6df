package summary

import "encoding/json"

// Document is one agent session summary, parsed from its JSON artifact.
// The tree holds the shapes encoding/json produces: map[string]any for
// objects, []any for arrays, and float64/string/bool/nil scalars.
type Document struct {
	root any
}

// Parse decodes a session summary artifact.
func Parse(data []byte) (*Document, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// FromValue wraps an already-built tree, used by simulated runners and tests.
func FromValue(root any) *Document {
	return &Document{root: root}
}

// Lookup walks the path and reports whether a value exists at it.
func (d *Document) Lookup(path Path) (any, bool) {
	if d == nil {
		return nil, false
	}
	node := d.root
	for _, seg := range path.segs {
		if seg.isIndex {
			list, ok := node.([]any)
			if !ok || seg.index < 0 || seg.index >= len(list) {
				return nil, false
			}
			node = list[seg.index]
			continue
		}
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = obj[seg.key]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Extract returns the first value matching path, or def when nothing matches.
// Absence is not an error: a counter that was never written simply defaults.
func Extract(d *Document, path Path, def any) any {
	if value, ok := d.Lookup(path); ok {
		return value
	}
	return def
}

// Number is Extract for numeric counters. Values that are not numbers
// resolve to def.
func Number(d *Document, path Path, def float64) float64 {
	value, ok := d.Lookup(path)
	if !ok {
		return def
	}
	switch n := value.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}
