package layer

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Metadata is an insertion-ordered key/value map.
type Metadata struct {
	keys   []string
	values map[string]any
}

// MetadataFromMap copies m with its keys in sorted order, since Go maps
// carry no order of their own.
func MetadataFromMap(m map[string]any) Metadata {
	var md Metadata
	for _, k := range slices.Sorted(maps.Keys(m)) {
		md.Set(k, m[k])
	}
	return md
}

// Set adds or replaces a value. Replacing keeps the key's position.
func (m *Metadata) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m Metadata) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m Metadata) Len() int       { return len(m.keys) }
func (m Metadata) Keys() []string { return slices.Clone(m.keys) }

// All yields the entries in insertion order.
func (m Metadata) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// String renders a value for display in tables and status lines.
func (m Metadata) String(key string) string {
	v, ok := m.values[key]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// FormatValue renders a GeoJSON property value.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(bs)
	}
}
