package spec

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Map is an insertion-ordered string-keyed map. OpenAPI documents attach
// meaning to declaration order (paths, methods, responses, content types,
// schema properties), so every mapping in the model is a Map.
//
// A nil *Map behaves as an empty map for all read operations.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// NewMap returns an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// Set stores value under key. Overwriting keeps the key's original position.
func (m *Map[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil || m.values == nil {
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in declaration order.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates entries in declaration order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// First returns the first entry in declaration order.
func (m *Map[V]) First() (string, V, bool) {
	var zero V
	if m.Len() == 0 {
		return "", zero, false
	}
	k := m.keys[0]
	return k, m.values[k], true
}

// Clone returns a shallow copy.
func (m *Map[V]) Clone() *Map[V] {
	if m == nil {
		return nil
	}
	out := &Map[V]{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]V, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON encodes the map as a JSON object with keys in declaration
// order. Raw example payloads decode into *Map[any], which is how authored
// examples keep their key order when rendered.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Object is the decoded form of a raw YAML/JSON mapping value.
type Object = Map[any]

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
