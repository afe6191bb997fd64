// Package document defines the universal value tree that every remap
// statement consumes and produces. A document is a closed tagged union:
// null, bool, int64, float64, string, bytes, array, or an ordered map.
// Map key order is insertion order and is preserved through every
// operation, so a re-encoded document keeps the shape it arrived with.
package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueType represents the type of values in a document
type ValueType string

const (
	NULL_VALUE    = "NULL"
	BOOLEAN_VALUE = "BOOLEAN"
	INTEGER_VALUE = "INTEGER"
	FLOAT_VALUE   = "FLOAT"
	STRING_VALUE  = "STRING"
	BYTES_VALUE   = "BYTES"
	ARRAY_VALUE   = "ARRAY"
	MAP_VALUE     = "MAP"
)

// Value represents all values in a document
type Value interface {
	Type() ValueType
	Inspect() string
}

// Null represents the null value
type Null struct{}

func (n *Null) Type() ValueType { return NULL_VALUE }
func (n *Null) Inspect() string { return "null" }

// Boolean represents boolean values
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ValueType { return BOOLEAN_VALUE }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

// Integer represents 64-bit signed integer values
type Integer struct {
	Value int64
}

func (i *Integer) Type() ValueType { return INTEGER_VALUE }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

// Float represents 64-bit floating-point values
type Float struct {
	Value float64
}

func (f *Float) Type() ValueType { return FLOAT_VALUE }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	// Keep a float visibly a float ("1" -> "1.0")
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

// String represents UTF-8 string values
type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_VALUE }
func (s *String) Inspect() string { return s.Value }

// Bytes represents raw byte values
type Bytes struct {
	Value []byte
}

func (b *Bytes) Type() ValueType { return BYTES_VALUE }
func (b *Bytes) Inspect() string { return fmt.Sprintf("<%d bytes>", len(b.Value)) }

// Array represents an ordered sequence of values
type Array struct {
	Elements []Value
}

func (a *Array) Type() ValueType { return ARRAY_VALUE }
func (a *Array) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, e := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(inspectQuoted(e))
	}
	out.WriteString("]")
	return out.String()
}

// Map represents an ordered key/value mapping. Keys are unique and
// iteration follows insertion order.
type Map struct {
	keys  []string
	pairs map[string]Value
}

func NewMap() *Map {
	return &Map{pairs: make(map[string]Value)}
}

func (m *Map) Type() ValueType { return MAP_VALUE }
func (m *Map) Inspect() string {
	var out strings.Builder
	out.WriteString("{")
	for i, k := range m.keys {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(strconv.Quote(k))
		out.WriteString(": ")
		out.WriteString(inspectQuoted(m.pairs[k]))
	}
	out.WriteString("}")
	return out.String()
}

// inspectQuoted renders nested strings with quotes so container output
// is unambiguous, matching the way arrays and maps print their elements.
func inspectQuoted(v Value) string {
	if s, ok := v.(*String); ok {
		return strconv.Quote(s.Value)
	}
	if v == nil {
		return "null"
	}
	return v.Inspect()
}

// Get returns the value for key, or (nil, false) if absent.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.pairs[key]
	return v, ok
}

// Set inserts or overwrites key. A new key is appended to the key order.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.pairs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.pairs[key] = v
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Map) Delete(key string) {
	if _, ok := m.pairs[key]; !ok {
		return
	}
	delete(m.pairs, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *Map) Len() int { return len(m.keys) }

// SortedKeys returns the keys in lexicographic order (for stable output
// where insertion order is unavailable, e.g. diagnostics).
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}

// Shared immutable singletons. Null, TRUE and FALSE carry no state, so a
// single instance of each can appear in any number of documents.
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Bool returns the shared Boolean for b.
func Bool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Clone returns a deep copy of v. Scalars are shared (they are immutable);
// arrays and maps are copied recursively so the result aliases nothing in v.
func Clone(v Value) Value {
	switch v := v.(type) {
	case *Array:
		elements := make([]Value, len(v.Elements))
		for i, e := range v.Elements {
			elements[i] = Clone(e)
		}
		return &Array{Elements: elements}
	case *Map:
		out := NewMap()
		for _, k := range v.keys {
			out.Set(k, Clone(v.pairs[k]))
		}
		return out
	case *Bytes:
		b := make([]byte, len(v.Value))
		copy(b, v.Value)
		return &Bytes{Value: b}
	case nil:
		return NULL
	default:
		return v
	}
}

// Equal reports deep structural equality. Int and Float compare
// numerically across types (1 == 1.0); map comparison ignores key order.
func Equal(a, b Value) bool {
	if a == nil {
		a = NULL
	}
	if b == nil {
		b = NULL
	}
	switch a := a.(type) {
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Boolean:
		bb, ok := b.(*Boolean)
		return ok && a.Value == bb.Value
	case *Integer:
		switch bb := b.(type) {
		case *Integer:
			return a.Value == bb.Value
		case *Float:
			return float64(a.Value) == bb.Value
		}
		return false
	case *Float:
		switch bb := b.(type) {
		case *Integer:
			return a.Value == float64(bb.Value)
		case *Float:
			return a.Value == bb.Value
		}
		return false
	case *String:
		bb, ok := b.(*String)
		return ok && a.Value == bb.Value
	case *Bytes:
		bb, ok := b.(*Bytes)
		if !ok || len(a.Value) != len(bb.Value) {
			return false
		}
		for i := range a.Value {
			if a.Value[i] != bb.Value[i] {
				return false
			}
		}
		return true
	case *Array:
		bb, ok := b.(*Array)
		if !ok || len(a.Elements) != len(bb.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], bb.Elements[i]) {
				return false
			}
		}
		return true
	case *Map:
		bb, ok := b.(*Map)
		if !ok || a.Len() != bb.Len() {
			return false
		}
		for _, k := range a.keys {
			bv, ok := bb.Get(k)
			if !ok || !Equal(a.pairs[k], bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Merge deep-merges other into v and returns the result. When both sides
// are maps the keys merge recursively (nested maps merge, everything else
// is overwritten by other); any other pairing is a full overwrite by other.
// Neither input is modified.
func Merge(v, other Value) Value {
	vm, vok := v.(*Map)
	om, ook := other.(*Map)
	if !vok || !ook {
		return Clone(other)
	}
	out := Clone(vm).(*Map)
	for _, k := range om.keys {
		ov := om.pairs[k]
		if existing, ok := out.Get(k); ok {
			out.Set(k, Merge(existing, ov))
		} else {
			out.Set(k, Clone(ov))
		}
	}
	return out
}
