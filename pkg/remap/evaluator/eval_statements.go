package evaluator

import (
	"sort"
	"strings"

	"github.com/remaplang/remap/pkg/remap/ast"
	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

func evalRename(s *ast.RenameStatement, doc document.Value) (document.Value, *rerrors.Error) {
	val, ok := Resolve(doc, s.From.Segments)
	if !ok {
		return doc, nil
	}
	out := Remove(doc, s.From.Segments)
	return Set(out, s.To.Segments, val), nil
}

// evalSelect keeps only the named paths, keyed by each path's last field
// name. Anything that is not a map passes through untouched.
func evalSelect(s *ast.SelectStatement, doc document.Value) (document.Value, *rerrors.Error) {
	if _, ok := doc.(*document.Map); !ok {
		return doc, nil
	}
	out := document.NewMap()
	for _, path := range s.Paths {
		val, ok := Resolve(doc, path.Segments)
		if !ok {
			continue
		}
		name, ok := path.LastField()
		if !ok {
			continue
		}
		out.Set(name, document.Clone(val))
	}
	return out, nil
}

func evalDrop(s *ast.DropStatement, doc document.Value) (document.Value, *rerrors.Error) {
	out := doc
	for _, path := range s.Paths {
		out = Remove(out, path.Segments)
	}
	return out, nil
}

func evalSet(s *ast.SetStatement, doc document.Value) (document.Value, *rerrors.Error) {
	val, err := evalExpression(s.Value, doc)
	if err != nil {
		return nil, err
	}
	return Set(doc, s.Path.Segments, val), nil
}

// evalDefault writes only when the path is currently absent or null.
func evalDefault(s *ast.DefaultStatement, doc document.Value) (document.Value, *rerrors.Error) {
	cur, ok := Resolve(doc, s.Path.Segments)
	if ok {
		if _, isNull := cur.(*document.Null); !isNull {
			return doc, nil
		}
	}
	val, err := evalExpression(s.Value, doc)
	if err != nil {
		return nil, err
	}
	return Set(doc, s.Path.Segments, val), nil
}

func evalCast(s *ast.CastStatement, doc document.Value) (document.Value, *rerrors.Error) {
	cur, ok := Resolve(doc, s.Path.Segments)
	if !ok {
		return doc, nil
	}
	converted, err := castValue(cur, s.TargetType)
	if err != nil {
		return nil, err.WithPosition(s.Token.Line, s.Token.Column)
	}
	return Set(doc, s.Path.Segments, converted), nil
}

// evalFlatten pulls a nested map's entries up into its parent, each key
// prefixed with either the given prefix or the map's own field name. One
// level only.
func evalFlatten(s *ast.FlattenStatement, doc document.Value) (document.Value, *rerrors.Error) {
	val, ok := Resolve(doc, s.Path.Segments)
	if !ok {
		return doc, nil
	}
	inner, ok := val.(*document.Map)
	if !ok {
		return doc, nil
	}
	prefix := s.Prefix
	if !s.HasPrefix {
		name, ok := s.Path.LastField()
		if !ok {
			return doc, nil
		}
		prefix = name
	}
	parent := s.Path.Segments[:len(s.Path.Segments)-1]
	out := Remove(doc, s.Path.Segments)
	for _, key := range inner.Keys() {
		v, _ := inner.Get(key)
		target := make([]ast.PathSegment, len(parent), len(parent)+1)
		copy(target, parent)
		target = append(target, ast.FieldSegment{Name: prefix + "_" + key})
		out = Set(out, target, v)
	}
	return out, nil
}

// evalNest gathers the named fields into a new map at the target path,
// stripping a leading "{target}_" prefix from each field name when
// present.
func evalNest(s *ast.NestStatement, doc document.Value) (document.Value, *rerrors.Error) {
	targetName, _ := s.Target.LastField()
	prefix := targetName + "_"
	built := document.NewMap()
	out := doc
	for _, path := range s.Paths {
		val, ok := Resolve(out, path.Segments)
		if !ok {
			continue
		}
		name, ok := path.LastField()
		if !ok {
			continue
		}
		built.Set(strings.TrimPrefix(name, prefix), document.Clone(val))
		out = Remove(out, path.Segments)
	}
	return Set(out, s.Target.Segments, built), nil
}

// evalWhere filters an array by the condition, each element evaluated as
// its own document. On a non-array the condition gates the whole
// document: kept as-is when truthy, replaced with null when not.
func evalWhere(s *ast.WhereStatement, doc document.Value) (document.Value, *rerrors.Error) {
	arr, ok := doc.(*document.Array)
	if !ok {
		cond, err := evalExpression(s.Condition, doc)
		if err != nil {
			return nil, err
		}
		if IsTruthy(cond) {
			return doc, nil
		}
		return document.NULL, nil
	}
	out := &document.Array{Elements: []document.Value{}}
	for _, elem := range arr.Elements {
		cond, err := evalExpression(s.Condition, elem)
		if err != nil {
			return nil, err
		}
		if IsTruthy(cond) {
			out.Elements = append(out.Elements, elem)
		}
	}
	return out, nil
}

// evalSort stable-sorts an array by each key in turn. Missing or null key
// values sort after everything else under both directions; ties fall
// through to the next key and a final tie keeps the original order.
func evalSort(s *ast.SortStatement, doc document.Value) (document.Value, *rerrors.Error) {
	arr, ok := doc.(*document.Array)
	if !ok {
		return doc, nil
	}
	out := &document.Array{Elements: make([]document.Value, len(arr.Elements))}
	copy(out.Elements, arr.Elements)
	sort.SliceStable(out.Elements, func(i, j int) bool {
		for _, key := range s.Keys {
			a, aok := Resolve(out.Elements[i], key.Path.Segments)
			b, bok := Resolve(out.Elements[j], key.Path.Segments)
			aNull := !aok || a.Type() == document.NULL_VALUE
			bNull := !bok || b.Type() == document.NULL_VALUE
			if aNull || bNull {
				if aNull == bNull {
					continue
				}
				return bNull
			}
			cmp := compareForSort(a, b)
			if cmp == 0 {
				continue
			}
			if key.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return out, nil
}

// compareForSort orders two values: numeric pairs numerically, strings
// lexicographically, booleans false-before-true. Incomparable pairings
// count as a tie so the next sort key decides.
func compareForSort(a, b document.Value) int {
	if af, aok := numericValue(a); aok {
		if bf, bok := numericValue(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
		return 0
	}
	switch a := a.(type) {
	case *document.String:
		if b, ok := b.(*document.String); ok {
			return strings.Compare(a.Value, b.Value)
		}
	case *document.Boolean:
		if b, ok := b.(*document.Boolean); ok {
			switch {
			case !a.Value && b.Value:
				return -1
			case a.Value && !b.Value:
				return 1
			}
		}
	}
	return 0
}

func numericValue(v document.Value) (float64, bool) {
	switch v := v.(type) {
	case *document.Integer:
		return float64(v.Value), true
	case *document.Float:
		return v.Value, true
	}
	return 0, false
}

// evalEach applies the block to every element of the array at the path
// and writes the results back. Anything but an array there is an error.
func evalEach(s *ast.EachStatement, doc document.Value) (document.Value, *rerrors.Error) {
	cur, ok := Resolve(doc, s.Path.Segments)
	if !ok {
		return nil, rerrors.NewWithPosition("TYPE-0003", s.Token.Line, s.Token.Column,
			map[string]any{"Path": s.Path.String(), "Got": "nothing"})
	}
	arr, ok := cur.(*document.Array)
	if !ok {
		return nil, rerrors.NewWithPosition("TYPE-0003", s.Token.Line, s.Token.Column,
			map[string]any{"Path": s.Path.String(), "Got": typeName(cur)})
	}
	out := &document.Array{Elements: make([]document.Value, len(arr.Elements))}
	for i, elem := range arr.Elements {
		result, err := Run(s.Body, elem)
		if err != nil {
			return nil, err
		}
		out.Elements[i] = result
	}
	return Set(doc, s.Path.Segments, out), nil
}

func evalWhen(s *ast.WhenStatement, doc document.Value) (document.Value, *rerrors.Error) {
	cond, err := evalExpression(s.Condition, doc)
	if err != nil {
		return nil, err
	}
	if !IsTruthy(cond) {
		return doc, nil
	}
	return Run(s.Body, doc)
}
