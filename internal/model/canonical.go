package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for hashing.
// This is the ONLY serialization used for content identity; manifests on
// disk use the ordered encoding from MarshalJSON instead.
//
// Differences from MarshalValue:
//  1. Object keys sorted by UTF-16 code units (RFC 8785), not insertion order
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. NaN and infinities are rejected
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		return writeCanonicalString(buf, string(val))
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("number %v is not representable in canonical JSON", f)
		}
		buf.WriteString(FormatNumber(f))
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Map:
		keys := val.Keys()
		slices.SortFunc(keys, compareKeysRFC8785)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			elem, _ := val.Get(k)
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string without HTML
// escaping. U+2028 and U+2029 are left literal as RFC 8785 requires.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. An escape preceded by an odd
// run of backslashes is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	var out []byte
	backslashes := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '\\' && backslashes%2 == 0 && i+6 <= len(data) &&
			string(data[i+1:i+5]) == "u202" && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			backslashes = 0
			continue
		}
		out = append(out, c)
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
	}
	return out
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
// Go's native string order is UTF-8 bytes, which differs above U+FFFF.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// NodeValue converts a node into a Value tree for canonical encoding.
func NodeValue(n *Node) Map {
	events := NewMap()
	for name, b := range n.Events.All() {
		events.Set(name, NewMap(
			P("action", String(b.Action)),
			P("params", b.Params.Clone()),
		))
	}
	parent := Value(Null{})
	if n.ParentID != "" {
		parent = String(n.ParentID)
	}
	return NewMap(
		P("id", String(n.ID)),
		P("type", String(n.Type)),
		P("parentId", parent),
		P("props", n.Props.Clone()),
		P("styles", n.Styles.Clone()),
		P("events", events),
		P("children", idList(n.Children)),
		P("locked", Bool(n.Locked)),
	)
}

// PageValue converts a page into a Value tree. Nodes are sorted by id since
// the flat collection's order carries no meaning; rootOrder and children do.
func PageValue(p *Page) Map {
	nodes := slices.Clone(p.Nodes)
	slices.SortFunc(nodes, func(a, b *Node) int { return strings.Compare(a.ID, b.ID) })
	list := make(List, len(nodes))
	for i, n := range nodes {
		list[i] = NodeValue(n)
	}
	return NewMap(
		P("id", String(p.ID)),
		P("name", String(p.Name)),
		P("route", String(p.Route)),
		P("componentTree", list),
		P("rootOrder", idList(p.RootOrder)),
	)
}

func idList(ids []string) List {
	out := make(List, len(ids))
	for i, id := range ids {
		out[i] = String(id)
	}
	return out
}
