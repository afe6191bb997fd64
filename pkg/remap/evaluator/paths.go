package evaluator

import (
	"github.com/remaplang/remap/pkg/remap/ast"
	"github.com/remaplang/remap/pkg/remap/document"
)

// The path engine is total: Resolve reports absence with a bool, Set and
// Remove silently no-op on anything they cannot address. Statements that
// do fail (cast, arithmetic) fail in their own handlers, never here.

// Resolve walks segments down from v. The second return value is false
// when any segment fails to address a value. A wildcard segment maps the
// remaining segments over every array element and collects the hits into
// a new array; an empty collection counts as absent.
func Resolve(v document.Value, segs []ast.PathSegment) (document.Value, bool) {
	if len(segs) == 0 {
		return v, true
	}
	switch seg := segs[0].(type) {
	case ast.FieldSegment:
		m, ok := v.(*document.Map)
		if !ok {
			return nil, false
		}
		child, ok := m.Get(seg.Name)
		if !ok {
			return nil, false
		}
		return Resolve(child, segs[1:])
	case ast.IndexSegment:
		arr, ok := v.(*document.Array)
		if !ok {
			return nil, false
		}
		i := arrayIndex(seg.Index, len(arr.Elements))
		if i < 0 {
			return nil, false
		}
		return Resolve(arr.Elements[i], segs[1:])
	case ast.WildcardSegment:
		arr, ok := v.(*document.Array)
		if !ok {
			return nil, false
		}
		collected := &document.Array{}
		for _, elem := range arr.Elements {
			if hit, ok := Resolve(elem, segs[1:]); ok {
				collected.Elements = append(collected.Elements, hit)
			}
		}
		if len(collected.Elements) == 0 {
			return nil, false
		}
		return collected, true
	}
	return nil, false
}

// Set writes value at the location segments address, returning a new
// document that shares no containers with v. Missing intermediate maps
// are created, arrays are null-padded out to the written index, and a
// wildcard broadcasts the write over every array element.
func Set(v document.Value, segs []ast.PathSegment, value document.Value) document.Value {
	if len(segs) == 0 {
		return document.Clone(value)
	}
	switch seg := segs[0].(type) {
	case ast.FieldSegment:
		m, ok := v.(*document.Map)
		if !ok {
			m = document.NewMap()
		} else {
			m = document.Clone(m).(*document.Map)
		}
		child, _ := m.Get(seg.Name)
		if child == nil {
			child = document.NULL
		}
		m.Set(seg.Name, Set(child, segs[1:], value))
		return m
	case ast.IndexSegment:
		arr, ok := v.(*document.Array)
		if !ok {
			arr = &document.Array{}
		} else {
			arr = document.Clone(arr).(*document.Array)
		}
		i := seg.Index
		if i < 0 {
			i += int64(len(arr.Elements))
		}
		if i < 0 {
			return arr
		}
		for int64(len(arr.Elements)) <= i {
			arr.Elements = append(arr.Elements, document.NULL)
		}
		arr.Elements[i] = Set(arr.Elements[i], segs[1:], value)
		return arr
	case ast.WildcardSegment:
		arr, ok := v.(*document.Array)
		if !ok {
			return document.Clone(v)
		}
		out := &document.Array{Elements: make([]document.Value, len(arr.Elements))}
		for i, elem := range arr.Elements {
			out.Elements[i] = Set(elem, segs[1:], value)
		}
		return out
	}
	return document.Clone(v)
}

// Remove deletes the leaf the segments address: a map key is dropped, an
// array element is spliced out with later elements shifting down. If any
// intermediate segment fails to resolve the document comes back unchanged
// (apart from being a fresh copy).
func Remove(v document.Value, segs []ast.PathSegment) document.Value {
	if len(segs) == 0 {
		return document.Clone(v)
	}
	last := len(segs) == 1
	switch seg := segs[0].(type) {
	case ast.FieldSegment:
		m, ok := v.(*document.Map)
		if !ok {
			return document.Clone(v)
		}
		child, ok := m.Get(seg.Name)
		if !ok {
			return document.Clone(v)
		}
		out := document.Clone(m).(*document.Map)
		if last {
			out.Delete(seg.Name)
		} else {
			out.Set(seg.Name, Remove(child, segs[1:]))
		}
		return out
	case ast.IndexSegment:
		arr, ok := v.(*document.Array)
		if !ok {
			return document.Clone(v)
		}
		i := arrayIndex(seg.Index, len(arr.Elements))
		if i < 0 {
			return document.Clone(v)
		}
		out := document.Clone(arr).(*document.Array)
		if last {
			out.Elements = append(out.Elements[:i], out.Elements[i+1:]...)
		} else {
			out.Elements[i] = Remove(out.Elements[i], segs[1:])
		}
		return out
	case ast.WildcardSegment:
		arr, ok := v.(*document.Array)
		if !ok {
			return document.Clone(v)
		}
		out := &document.Array{Elements: make([]document.Value, len(arr.Elements))}
		for i, elem := range arr.Elements {
			out.Elements[i] = Remove(elem, segs[1:])
		}
		return out
	}
	return document.Clone(v)
}

// arrayIndex normalizes a possibly negative index against length,
// returning -1 when it falls outside the array.
func arrayIndex(i int64, length int) int {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return -1
	}
	return int(i)
}
