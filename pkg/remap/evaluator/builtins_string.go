package evaluator

import (
	"strings"

	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

func init() {
	lenBuiltin := &Builtin{Fn: builtinLen, MinArgs: 1, MaxArgs: 1}
	lowerBuiltin := stringBuiltin("lower", strings.ToLower)
	upperBuiltin := stringBuiltin("upper", strings.ToUpper)

	registerBuiltins(map[string]*Builtin{
		"lower":     lowerBuiltin,
		"lowercase": lowerBuiltin,
		"upper":     upperBuiltin,
		"uppercase": upperBuiltin,
		"trim":      stringBuiltin("trim", strings.TrimSpace),
		"trim_start": stringBuiltin("trim_start", func(s string) string {
			return strings.TrimLeft(s, " \t\n\r")
		}),
		"trim_end": stringBuiltin("trim_end", func(s string) string {
			return strings.TrimRight(s, " \t\n\r")
		}),
		"len":         lenBuiltin,
		"length":      lenBuiltin,
		"replace":     {Fn: builtinReplace, MinArgs: 3, MaxArgs: 3},
		"contains":    {Fn: builtinContains, MinArgs: 2, MaxArgs: 2},
		"starts_with": {Fn: builtinStartsWith, MinArgs: 2, MaxArgs: 2},
		"ends_with":   {Fn: builtinEndsWith, MinArgs: 2, MaxArgs: 2},
		"substr":      {Fn: builtinSubstr, MinArgs: 2, MaxArgs: 3},
		"concat":      {Fn: builtinConcat, MinArgs: 1, MaxArgs: -1},
		"split":       {Fn: builtinSplit, MinArgs: 2, MaxArgs: 2},
		"join":        {Fn: builtinJoin, MinArgs: 2, MaxArgs: 2},
		"reverse":     {Fn: builtinReverse, MinArgs: 1, MaxArgs: 1},
	})
}

// stringBuiltin wraps a plain string→string function.
func stringBuiltin(name string, f func(string) string) *Builtin {
	return &Builtin{
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []document.Value) (document.Value, *rerrors.Error) {
			s, err := wantString(name, args[0])
			if err != nil {
				return nil, err
			}
			return &document.String{Value: f(s.Value)}, nil
		},
	}
}

// builtinLen counts runes of a string or entries of a container.
func builtinLen(args []document.Value) (document.Value, *rerrors.Error) {
	switch v := args[0].(type) {
	case *document.String:
		return &document.Integer{Value: int64(len([]rune(v.Value)))}, nil
	case *document.Bytes:
		return &document.Integer{Value: int64(len(v.Value))}, nil
	case *document.Array:
		return &document.Integer{Value: int64(len(v.Elements))}, nil
	case *document.Map:
		return &document.Integer{Value: int64(v.Len())}, nil
	}
	return nil, rerrors.New("TYPE-0002", map[string]any{"Function": "len", "Got": typeName(args[0])})
}

func builtinReplace(args []document.Value) (document.Value, *rerrors.Error) {
	s, err := wantString("replace", args[0])
	if err != nil {
		return nil, err
	}
	old, err := wantString("replace", args[1])
	if err != nil {
		return nil, err
	}
	new_, err := wantString("replace", args[2])
	if err != nil {
		return nil, err
	}
	return &document.String{Value: strings.ReplaceAll(s.Value, old.Value, new_.Value)}, nil
}

// builtinContains checks a substring, or membership when given an array.
func builtinContains(args []document.Value) (document.Value, *rerrors.Error) {
	if arr, ok := args[0].(*document.Array); ok {
		for _, elem := range arr.Elements {
			if document.Equal(elem, args[1]) {
				return document.TRUE, nil
			}
		}
		return document.FALSE, nil
	}
	s, err := wantString("contains", args[0])
	if err != nil {
		return nil, err
	}
	sub, err := wantString("contains", args[1])
	if err != nil {
		return nil, err
	}
	return document.Bool(strings.Contains(s.Value, sub.Value)), nil
}

func builtinStartsWith(args []document.Value) (document.Value, *rerrors.Error) {
	s, err := wantString("starts_with", args[0])
	if err != nil {
		return nil, err
	}
	prefix, err := wantString("starts_with", args[1])
	if err != nil {
		return nil, err
	}
	return document.Bool(strings.HasPrefix(s.Value, prefix.Value)), nil
}

func builtinEndsWith(args []document.Value) (document.Value, *rerrors.Error) {
	s, err := wantString("ends_with", args[0])
	if err != nil {
		return nil, err
	}
	suffix, err := wantString("ends_with", args[1])
	if err != nil {
		return nil, err
	}
	return document.Bool(strings.HasSuffix(s.Value, suffix.Value)), nil
}

// builtinSubstr slices by rune offset and optional length. A negative
// start counts from the end; out-of-range bounds clamp.
func builtinSubstr(args []document.Value) (document.Value, *rerrors.Error) {
	s, err := wantString("substr", args[0])
	if err != nil {
		return nil, err
	}
	start, err := wantInteger("substr", args[1])
	if err != nil {
		return nil, err
	}
	runes := []rune(s.Value)
	n := int64(len(runes))
	if start < 0 {
		start += n
	}
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if len(args) == 3 {
		length, err := wantInteger("substr", args[2])
		if err != nil {
			return nil, err
		}
		if length < 0 {
			length = 0
		}
		end = start + length
		if end > n {
			end = n
		}
	}
	return &document.String{Value: string(runes[start:end])}, nil
}

// builtinConcat joins strings, stringifying other scalars; all-array
// arguments concatenate into one array instead.
func builtinConcat(args []document.Value) (document.Value, *rerrors.Error) {
	allArrays := true
	for _, arg := range args {
		if _, ok := arg.(*document.Array); !ok {
			allArrays = false
			break
		}
	}
	if allArrays {
		out := &document.Array{}
		for _, arg := range args {
			out.Elements = append(out.Elements, arg.(*document.Array).Elements...)
		}
		return out, nil
	}
	var out strings.Builder
	for _, arg := range args {
		out.WriteString(Stringify(arg))
	}
	return &document.String{Value: out.String()}, nil
}

func builtinSplit(args []document.Value) (document.Value, *rerrors.Error) {
	s, err := wantString("split", args[0])
	if err != nil {
		return nil, err
	}
	sep, err := wantString("split", args[1])
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s.Value, sep.Value)
	out := &document.Array{Elements: make([]document.Value, len(parts))}
	for i, part := range parts {
		out.Elements[i] = &document.String{Value: part}
	}
	return out, nil
}

func builtinJoin(args []document.Value) (document.Value, *rerrors.Error) {
	arr, err := wantArray("join", args[0])
	if err != nil {
		return nil, err
	}
	sep, err := wantString("join", args[1])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(arr.Elements))
	for i, elem := range arr.Elements {
		parts[i] = Stringify(elem)
	}
	return &document.String{Value: strings.Join(parts, sep.Value)}, nil
}

func builtinReverse(args []document.Value) (document.Value, *rerrors.Error) {
	switch v := args[0].(type) {
	case *document.String:
		runes := []rune(v.Value)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return &document.String{Value: string(runes)}, nil
	case *document.Array:
		out := &document.Array{Elements: make([]document.Value, len(v.Elements))}
		for i, elem := range v.Elements {
			out.Elements[len(v.Elements)-1-i] = elem
		}
		return out, nil
	}
	return nil, rerrors.New("TYPE-0002", map[string]any{"Function": "reverse", "Got": typeName(args[0])})
}
