package evaluator

import (
	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

func init() {
	registerBuiltins(map[string]*Builtin{
		"is_null":  {Fn: builtinIsNull, MinArgs: 1, MaxArgs: 1},
		"is_array": {Fn: builtinIsArray, MinArgs: 1, MaxArgs: 1},
		"coalesce": {Fn: builtinCoalesce, MinArgs: 1, MaxArgs: -1},
		"default":  {Fn: builtinDefault, MinArgs: 2, MaxArgs: 2},

		"keys":     {Fn: builtinKeys, MinArgs: 1, MaxArgs: 1},
		"values":   {Fn: builtinValues, MinArgs: 1, MaxArgs: 1},
		"unique":   {Fn: builtinUnique, MinArgs: 1, MaxArgs: 1},
		"first":    {Fn: builtinFirst, MinArgs: 1, MaxArgs: 1},
		"last":     {Fn: builtinLast, MinArgs: 1, MaxArgs: 1},
		"sum":      {Fn: builtinSum, MinArgs: 1, MaxArgs: 1},
		"group_by": {Fn: builtinGroupBy, MinArgs: 2, MaxArgs: 2},

		"if": {Fn: builtinIf, MinArgs: 3, MaxArgs: 3},
	})
}

func isNull(v document.Value) bool {
	_, ok := v.(*document.Null)
	return ok
}

func builtinIsNull(args []document.Value) (document.Value, *rerrors.Error) {
	return document.Bool(isNull(args[0])), nil
}

func builtinIsArray(args []document.Value) (document.Value, *rerrors.Error) {
	_, ok := args[0].(*document.Array)
	return document.Bool(ok), nil
}

// builtinCoalesce returns the first non-null argument.
func builtinCoalesce(args []document.Value) (document.Value, *rerrors.Error) {
	for _, arg := range args {
		if !isNull(arg) {
			return arg, nil
		}
	}
	return document.NULL, nil
}

// builtinDefault substitutes the fallback when the first argument is
// null.
func builtinDefault(args []document.Value) (document.Value, *rerrors.Error) {
	if isNull(args[0]) {
		return args[1], nil
	}
	return args[0], nil
}

func builtinKeys(args []document.Value) (document.Value, *rerrors.Error) {
	m, err := wantMap("keys", args[0])
	if err != nil {
		return nil, err
	}
	out := &document.Array{}
	for _, key := range m.Keys() {
		out.Elements = append(out.Elements, &document.String{Value: key})
	}
	return out, nil
}

func builtinValues(args []document.Value) (document.Value, *rerrors.Error) {
	m, err := wantMap("values", args[0])
	if err != nil {
		return nil, err
	}
	out := &document.Array{}
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		out.Elements = append(out.Elements, v)
	}
	return out, nil
}

// builtinUnique drops later duplicates, keeping first-seen order.
// Quadratic, but deep equality over arbitrary values has no cheap hash.
func builtinUnique(args []document.Value) (document.Value, *rerrors.Error) {
	arr, err := wantArray("unique", args[0])
	if err != nil {
		return nil, err
	}
	out := &document.Array{}
	for _, elem := range arr.Elements {
		seen := false
		for _, kept := range out.Elements {
			if document.Equal(kept, elem) {
				seen = true
				break
			}
		}
		if !seen {
			out.Elements = append(out.Elements, elem)
		}
	}
	return out, nil
}

func builtinFirst(args []document.Value) (document.Value, *rerrors.Error) {
	arr, err := wantArray("first", args[0])
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return document.NULL, nil
	}
	return arr.Elements[0], nil
}

func builtinLast(args []document.Value) (document.Value, *rerrors.Error) {
	arr, err := wantArray("last", args[0])
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return document.NULL, nil
	}
	return arr.Elements[len(arr.Elements)-1], nil
}

// builtinSum adds numeric elements; the result stays an integer unless a
// float appears. Nulls are skipped, anything else is an error.
func builtinSum(args []document.Value) (document.Value, *rerrors.Error) {
	arr, err := wantArray("sum", args[0])
	if err != nil {
		return nil, err
	}
	var intSum int64
	var floatSum float64
	sawFloat := false
	for _, elem := range arr.Elements {
		switch v := elem.(type) {
		case *document.Integer:
			intSum += v.Value
		case *document.Float:
			floatSum += v.Value
			sawFloat = true
		case *document.Null:
		default:
			return nil, rerrors.New("TYPE-0002", map[string]any{
				"Function": "sum", "Got": typeName(elem),
			})
		}
	}
	if sawFloat {
		return &document.Float{Value: floatSum + float64(intSum)}, nil
	}
	return &document.Integer{Value: intSum}, nil
}

// builtinGroupBy buckets array elements by the named field, keyed by the
// field value's textual form. Elements missing the field group under
// "null". Bucket order follows first appearance.
func builtinGroupBy(args []document.Value) (document.Value, *rerrors.Error) {
	arr, err := wantArray("group_by", args[0])
	if err != nil {
		return nil, err
	}
	field, err := wantString("group_by", args[1])
	if err != nil {
		return nil, err
	}
	out := document.NewMap()
	for _, elem := range arr.Elements {
		key := "null"
		if m, ok := elem.(*document.Map); ok {
			if v, ok := m.Get(field.Value); ok {
				key = Stringify(v)
			}
		}
		bucket, ok := out.Get(key)
		if !ok {
			bucket = &document.Array{}
			out.Set(key, bucket)
		}
		b := bucket.(*document.Array)
		b.Elements = append(b.Elements, elem)
		out.Set(key, b)
	}
	return out, nil
}

// builtinIf picks between two already-evaluated branches; both sides are
// computed before the choice, matching and/or.
func builtinIf(args []document.Value) (document.Value, *rerrors.Error) {
	if IsTruthy(args[0]) {
		return args[1], nil
	}
	return args[2], nil
}
