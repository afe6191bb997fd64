package evaluator

import (
	"sort"

	"github.com/remaplang/remap/pkg/remap/ast"
	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

// BuiltinFn implements one builtin function over already-evaluated
// arguments.
type BuiltinFn func(args []document.Value) (document.Value, *rerrors.Error)

// Builtin pairs an implementation with its arity bounds. MaxArgs of -1
// means variadic.
type Builtin struct {
	Fn      BuiltinFn
	MinArgs int
	MaxArgs int
}

// builtins is the function registry. Aliases register the same *Builtin
// under several names.
var builtins = map[string]*Builtin{}

func registerBuiltins(m map[string]*Builtin) {
	for name, b := range m {
		builtins[name] = b
	}
}

// builtinNames lists registry names for typo suggestions.
func builtinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// evalCall evaluates the arguments left to right, then dispatches by
// name with the arity checked before the implementation runs.
func evalCall(e *ast.CallExpression, doc document.Value) (document.Value, *rerrors.Error) {
	fn, ok := builtins[e.Function]
	if !ok {
		err := rerrors.NewUnknownFunction(e.Function, builtinNames())
		return nil, err.WithPosition(e.Token.Line, e.Token.Column)
	}

	args := make([]document.Value, len(e.Arguments))
	for i, arg := range e.Arguments {
		v, err := evalExpression(arg, doc)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if err := checkArity(e.Function, fn, len(args)); err != nil {
		return nil, err.WithPosition(e.Token.Line, e.Token.Column)
	}

	result, err := fn.Fn(args)
	if err != nil {
		return nil, err.WithPosition(e.Token.Line, e.Token.Column)
	}
	return result, nil
}

func checkArity(name string, fn *Builtin, got int) *rerrors.Error {
	if fn.MaxArgs == -1 {
		if got < fn.MinArgs {
			return rerrors.New("ARITY-0001", map[string]any{
				"Function": name, "Got": got, "Want": fn.MinArgs,
			})
		}
		return nil
	}
	if got < fn.MinArgs || got > fn.MaxArgs {
		if fn.MinArgs == fn.MaxArgs {
			return rerrors.New("ARITY-0001", map[string]any{
				"Function": name, "Got": got, "Want": fn.MinArgs,
			})
		}
		return rerrors.New("ARITY-0002", map[string]any{
			"Function": name, "Min": fn.MinArgs, "Max": fn.MaxArgs, "Got": got,
		})
	}
	return nil
}

// typeName renders a value's type the way users write it.
func typeName(v document.Value) string {
	switch v.Type() {
	case document.NULL_VALUE:
		return "null"
	case document.BOOLEAN_VALUE:
		return "bool"
	case document.INTEGER_VALUE:
		return "int"
	case document.FLOAT_VALUE:
		return "float"
	case document.STRING_VALUE:
		return "string"
	case document.BYTES_VALUE:
		return "bytes"
	case document.ARRAY_VALUE:
		return "array"
	case document.MAP_VALUE:
		return "map"
	}
	return "unknown"
}

// Argument type helpers shared by the builtin implementations.

func wantString(fn string, v document.Value) (*document.String, *rerrors.Error) {
	if s, ok := v.(*document.String); ok {
		return s, nil
	}
	return nil, rerrors.New("TYPE-0004", map[string]any{
		"Function": fn, "Expected": "a string", "Got": typeName(v),
	})
}

func wantArray(fn string, v document.Value) (*document.Array, *rerrors.Error) {
	if a, ok := v.(*document.Array); ok {
		return a, nil
	}
	return nil, rerrors.New("TYPE-0004", map[string]any{
		"Function": fn, "Expected": "an array", "Got": typeName(v),
	})
}

func wantMap(fn string, v document.Value) (*document.Map, *rerrors.Error) {
	if m, ok := v.(*document.Map); ok {
		return m, nil
	}
	return nil, rerrors.New("TYPE-0004", map[string]any{
		"Function": fn, "Expected": "a map", "Got": typeName(v),
	})
}

func wantInteger(fn string, v document.Value) (int64, *rerrors.Error) {
	if n, ok := v.(*document.Integer); ok {
		return n.Value, nil
	}
	return 0, rerrors.New("TYPE-0002", map[string]any{
		"Function": fn, "Got": typeName(v),
	})
}

func wantNumber(fn string, v document.Value) (float64, *rerrors.Error) {
	if f, ok := numericValue(v); ok {
		return f, nil
	}
	return 0, rerrors.New("TYPE-0002", map[string]any{
		"Function": fn, "Got": typeName(v),
	})
}
