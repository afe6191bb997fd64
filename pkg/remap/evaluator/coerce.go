package evaluator

import (
	"strconv"
	"strings"

	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

// castValue converts a value to the canonical target type ("int",
// "float", "string", "bool"). The same table backs both the cast
// statement and the to_* builtins. Null converts to each target's
// zero-like value.
func castValue(v document.Value, target string) (document.Value, *rerrors.Error) {
	switch target {
	case "int":
		return castToInt(v)
	case "float":
		return castToFloat(v)
	case "string":
		return castToString(v)
	case "bool":
		return castToBool(v)
	}
	return nil, rerrors.New("CAST-0001", map[string]any{"From": string(v.Type()), "To": target})
}

func castToInt(v document.Value) (document.Value, *rerrors.Error) {
	switch v := v.(type) {
	case *document.Integer:
		return v, nil
	case *document.Float:
		return &document.Integer{Value: int64(v.Value)}, nil
	case *document.String:
		if n, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64); err == nil {
			return &document.Integer{Value: n}, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64); err == nil {
			return &document.Integer{Value: int64(f)}, nil
		}
		return nil, rerrors.New("CAST-0002", map[string]any{"Value": strconv.Quote(v.Value), "To": "int"})
	case *document.Null:
		return &document.Integer{Value: 0}, nil
	}
	return nil, rerrors.New("CAST-0001", map[string]any{"From": string(v.Type()), "To": "int"})
}

func castToFloat(v document.Value) (document.Value, *rerrors.Error) {
	switch v := v.(type) {
	case *document.Float:
		return v, nil
	case *document.Integer:
		return &document.Float{Value: float64(v.Value)}, nil
	case *document.String:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64); err == nil {
			return &document.Float{Value: f}, nil
		}
		return nil, rerrors.New("CAST-0002", map[string]any{"Value": strconv.Quote(v.Value), "To": "float"})
	case *document.Null:
		return &document.Float{Value: 0}, nil
	}
	return nil, rerrors.New("CAST-0001", map[string]any{"From": string(v.Type()), "To": "float"})
}

func castToString(v document.Value) (document.Value, *rerrors.Error) {
	if s, ok := v.(*document.String); ok {
		return s, nil
	}
	return &document.String{Value: Stringify(v)}, nil
}

func castToBool(v document.Value) (document.Value, *rerrors.Error) {
	switch v := v.(type) {
	case *document.Boolean:
		return v, nil
	case *document.Integer:
		return document.Bool(v.Value != 0), nil
	case *document.Float:
		return document.Bool(v.Value != 0), nil
	case *document.String:
		switch strings.ToLower(v.Value) {
		case "true", "1", "yes":
			return document.TRUE, nil
		case "false", "0", "no", "":
			return document.FALSE, nil
		}
		return nil, rerrors.New("CAST-0002", map[string]any{"Value": strconv.Quote(v.Value), "To": "bool"})
	case *document.Null:
		return document.FALSE, nil
	}
	return nil, rerrors.New("CAST-0001", map[string]any{"From": string(v.Type()), "To": "bool"})
}
