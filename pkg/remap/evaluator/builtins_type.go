package evaluator

import (
	"math"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

func init() {
	parseDate := &Builtin{Fn: builtinParseDate, MinArgs: 1, MaxArgs: 2}

	registerBuiltins(map[string]*Builtin{
		"to_int":    castBuiltin("int"),
		"to_float":  castBuiltin("float"),
		"to_string": castBuiltin("string"),
		"to_bool":   castBuiltin("bool"),
		"type_of":   {Fn: builtinTypeOf, MinArgs: 1, MaxArgs: 1},

		"abs":   {Fn: builtinAbs, MinArgs: 1, MaxArgs: 1},
		"min":   {Fn: builtinMin, MinArgs: 1, MaxArgs: -1},
		"max":   {Fn: builtinMax, MinArgs: 1, MaxArgs: -1},
		"floor": mathBuiltin("floor", math.Floor),
		"ceil":  mathBuiltin("ceil", math.Ceil),
		"round": mathBuiltin("round", math.Round),

		"parse_date": parseDate,
		"to_date":    parseDate,
	})
}

// castBuiltin exposes one row of the cast table as a function.
func castBuiltin(target string) *Builtin {
	return &Builtin{
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []document.Value) (document.Value, *rerrors.Error) {
			return castValue(args[0], target)
		},
	}
}

func builtinTypeOf(args []document.Value) (document.Value, *rerrors.Error) {
	return &document.String{Value: typeName(args[0])}, nil
}

func builtinAbs(args []document.Value) (document.Value, *rerrors.Error) {
	switch v := args[0].(type) {
	case *document.Integer:
		if v.Value < 0 {
			return &document.Integer{Value: -v.Value}, nil
		}
		return v, nil
	case *document.Float:
		return &document.Float{Value: math.Abs(v.Value)}, nil
	}
	return nil, rerrors.New("TYPE-0002", map[string]any{"Function": "abs", "Got": typeName(args[0])})
}

// builtinMin and builtinMax accept either a single array argument or a
// variadic list of numbers.
func builtinMin(args []document.Value) (document.Value, *rerrors.Error) {
	return pickExtreme("min", args, func(a, b float64) bool { return a < b })
}

func builtinMax(args []document.Value) (document.Value, *rerrors.Error) {
	return pickExtreme("max", args, func(a, b float64) bool { return a > b })
}

func pickExtreme(name string, args []document.Value, better func(a, b float64) bool) (document.Value, *rerrors.Error) {
	values := args
	if len(args) == 1 {
		if arr, ok := args[0].(*document.Array); ok {
			values = arr.Elements
		}
	}
	if len(values) == 0 {
		return document.NULL, nil
	}
	best := values[0]
	bestF, err := wantNumber(name, best)
	if err != nil {
		return nil, err
	}
	for _, v := range values[1:] {
		f, err := wantNumber(name, v)
		if err != nil {
			return nil, err
		}
		if better(f, bestF) {
			best, bestF = v, f
		}
	}
	return best, nil
}

// mathBuiltin wraps a float→float rounding function; integers pass
// through, floats come back as integers.
func mathBuiltin(name string, f func(float64) float64) *Builtin {
	return &Builtin{
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []document.Value) (document.Value, *rerrors.Error) {
			switch v := args[0].(type) {
			case *document.Integer:
				return v, nil
			case *document.Float:
				return &document.Integer{Value: int64(f(v.Value))}, nil
			}
			return nil, rerrors.New("TYPE-0002", map[string]any{"Function": name, "Got": typeName(args[0])})
		},
	}
}

// builtinParseDate normalizes a date string of almost any common layout
// to RFC 3339. An optional second argument gives an explicit output
// layout in Go reference-time form.
func builtinParseDate(args []document.Value) (document.Value, *rerrors.Error) {
	s, err := wantString("parse_date", args[0])
	if err != nil {
		return nil, err
	}
	t, perr := dateparse.ParseAny(s.Value)
	if perr != nil {
		return nil, rerrors.New("CAST-0002", map[string]any{
			"Value": strconv.Quote(s.Value), "To": "date",
		})
	}
	layout := time.RFC3339
	if len(args) == 2 {
		l, err := wantString("parse_date", args[1])
		if err != nil {
			return nil, err
		}
		layout = l.Value
	}
	return &document.String{Value: t.Format(layout)}, nil
}
