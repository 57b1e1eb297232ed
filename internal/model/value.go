package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Value is a sealed interface representing a property, style or parameter value.
// Only Null, String, Number, Bool, List and Map implement it.
type Value interface {
	isValue() // Sealed - only these types implement it
}

// Null represents an explicit JSON null.
type Null struct{}

func (Null) isValue() {}

// String is a text value.
type String string

func (String) isValue() {}

// Number is a numeric value. Pixel sizes, grid columns and slider steps all
// land here, so fractions are allowed.
type Number float64

func (Number) isValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) isValue() {}

// List is an ordered sequence of values.
type List []Value

func (List) isValue() {}

// Pair is a key-value pair for ordered Map construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: NewMap(P("label", String("Click")), P("disabled", Bool(false)))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// FromAny converts a decoded Go value (from encoding/json, yaml.v3 or CUE)
// into a Value. Keys of plain Go maps are sorted since their order is lost.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case *Map:
		return val.Clone(), nil
	case Value:
		return CloneValue(val), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case float64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Number(f), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			item, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var m Map
		for _, k := range keys {
			item, err := FromAny(val[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			m.Set(k, item)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// MustFromAny is FromAny for literals known to be valid. Panics on error.
func MustFromAny(v any) Value {
	val, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return val
}

// CloneValue returns an independently owned copy of v.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case nil:
		return nil
	case List:
		if val == nil {
			return List(nil)
		}
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = CloneValue(elem)
		}
		return out
	case Map:
		return val.Clone()
	default:
		// Null, String, Number and Bool are immutable scalars.
		return val
	}
}

// Truthy reports whether v counts as "set" for attribute and style emission.
// Empty strings, zero, false and null are falsy; lists and maps are truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case String:
		return val != ""
	case Number:
		return val != 0 && !math.IsNaN(float64(val))
	case Bool:
		return bool(val)
	default:
		return true
	}
}

// Text renders v as plain text: strings verbatim, numbers without trailing
// zeros, booleans as true/false, null as "" and structured values as JSON.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case String:
		return string(val)
	case Number:
		return FormatNumber(float64(val))
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		data, err := MarshalValue(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// FormatNumber formats f in its shortest decimal form ("3", "0.5", "-12.25").
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalValue marshals a Value to JSON, keeping Map insertion order.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %v is not representable in JSON", f)
		}
		return []byte(FormatNumber(f)), nil
	case Bool:
		return json.Marshal(bool(val))
	case List:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := MarshalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case Map:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// UnmarshalValue decodes JSON into a Value, keeping object key order.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// decodeValue reads one JSON value from the token stream.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '[':
			list := List{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return nil, err
			}
			return list, nil
		case '{':
			m, err := decodeObjectBody(dec)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// decodeObjectBody reads key/value pairs after an opening '{' through the closing '}'.
func decodeObjectBody(dec *json.Decoder) (Map, error) {
	var m Map
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Map{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Map{}, fmt.Errorf("object key must be a string, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Map{}, fmt.Errorf("key %q: %w", key, err)
		}
		m.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // closing }
		return Map{}, err
	}
	return m, nil
}
