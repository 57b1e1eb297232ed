package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"gopkg.in/yaml.v3"
)

// ordered is an insertion-ordered string-keyed map.
// The zero value is empty and ready to use through a pointer receiver.
// An empty ordered map always has nil internals so that reflect.DeepEqual
// treats every empty map alike.
type ordered[V any] struct {
	keys []string
	vals map[string]V
}

// Len returns the number of entries.
func (o ordered[V]) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o ordered[V]) Keys() []string {
	return slices.Clone(o.keys)
}

// Get returns the value stored under key.
func (o ordered[V]) Get(key string) (V, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (o ordered[V]) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// All iterates entries in insertion order.
func (o ordered[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range o.keys {
			if !yield(k, o.vals[k]) {
				return
			}
		}
	}
}

// Set stores v under key. New keys are appended; existing keys keep their position.
func (o *ordered[V]) Set(key string, v V) {
	if o.vals == nil {
		o.vals = make(map[string]V)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Delete removes key. Deleting the last entry resets the map to its zero value.
func (o *ordered[V]) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	if len(o.keys) == 0 {
		o.keys, o.vals = nil, nil
	}
}

// clone copies the map, duplicating each value with cp.
func (o ordered[V]) clone(cp func(V) V) ordered[V] {
	if len(o.keys) == 0 {
		return ordered[V]{}
	}
	out := ordered[V]{
		keys: slices.Clone(o.keys),
		vals: make(map[string]V, len(o.vals)),
	}
	for k, v := range o.vals {
		out.vals[k] = cp(v)
	}
	return out
}

// equal compares keys, order and values.
func (o ordered[V]) equal(other ordered[V], eq func(a, b V) bool) bool {
	if !slices.Equal(o.keys, other.keys) {
		return false
	}
	for _, k := range o.keys {
		if !eq(o.vals[k], other.vals[k]) {
			return false
		}
	}
	return true
}

// Map is an insertion-ordered map of Values. Props, styles, event params
// and global styles are all Maps. Map is itself a Value (a structured object).
type Map struct {
	ordered[Value]
}

func (Map) isValue() {}

// NewMap builds a Map from pairs, in order.
func NewMap(pairs ...Pair) Map {
	var m Map
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Clone returns a deep copy.
func (m Map) Clone() Map {
	return Map{m.clone(CloneValue)}
}

// Equal reports deep equality including key order.
func (m Map) Equal(other Map) bool {
	return m.equal(other.ordered, ValuesEqual)
}

// GetString returns the value under key when it is a String, or "".
func (m Map) GetString(key string) string {
	if v, ok := m.Get(key); ok {
		if s, ok := v.(String); ok {
			return string(s)
		}
	}
	return ""
}

// ToAny converts the map to plain Go values (keys lose their order).
func (m Map) ToAny() map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		out[k] = ValueToAny(v)
	}
	return out
}

// ValueToAny converts a Value into plain Go values.
func ValueToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ValueToAny(elem)
		}
		return out
	case Map:
		return val.ToAny()
	default:
		return nil
	}
}

// ValuesEqual compares two Values deeply.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case nil, Null:
		switch b.(type) {
		case nil, Null:
			return true
		}
		return false
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// MarshalJSON writes keys in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalValue(m.vals[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping key order. null, "" and [] decode
// to an empty map; older manifests stored empty containers that way.
func (m *Map) UnmarshalJSON(data []byte) error {
	*m = Map{}
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "null", `""`, "[]":
		return nil
	}
	v, err := UnmarshalValue(trimmed)
	if err != nil {
		return err
	}
	obj, ok := v.(Map)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*m = obj
	return nil
}

// UnmarshalYAML reads a mapping node keeping key order.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	*m = Map{}
	v, err := valueFromYAML(node)
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case Null:
		return nil
	case Map:
		*m = val
		return nil
	default:
		return fmt.Errorf("line %d: expected a mapping, got %T", node.Line, v)
	}
}

// valueFromYAML converts a yaml.v3 node tree into a Value.
func valueFromYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		return valueFromYAML(node.Content[0])
	case yaml.AliasNode:
		return valueFromYAML(node.Alias)
	case yaml.MappingNode:
		var m Map
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			val, err := valueFromYAML(node.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			m.Set(key, val)
		}
		return m, nil
	case yaml.SequenceNode:
		list := List{}
		for _, child := range node.Content {
			val, err := valueFromYAML(child)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil
	case yaml.ScalarNode:
		var raw any
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		if v, err := FromAny(raw); err == nil {
			return v, nil
		}
		return String(node.Value), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", node.Line, node.Kind)
	}
}
