package results

import (
	"bytes"
	"encoding/json"
)

// OrderedMap is a string-keyed map that marshals to a JSON object with keys
// in insertion order.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func newOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores v under key, appending key when it is new.
func (m *OrderedMap[V]) Set(key string, v V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
