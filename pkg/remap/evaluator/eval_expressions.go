package evaluator

import (
	"strings"

	"github.com/remaplang/remap/pkg/remap/ast"
	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

// evalExpression evaluates an expression against the current document.
// Paths that fail to resolve yield null rather than an error.
func evalExpression(expr ast.Expression, doc document.Value) (document.Value, *rerrors.Error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return &document.Integer{Value: e.Value}, nil
	case *ast.FloatLiteral:
		return &document.Float{Value: e.Value}, nil
	case *ast.StringLiteral:
		return &document.String{Value: e.Value}, nil
	case *ast.BooleanLiteral:
		return document.Bool(e.Value), nil
	case *ast.NullLiteral:
		return document.NULL, nil
	case *ast.Path:
		if v, ok := Resolve(doc, e.Segments); ok {
			return v, nil
		}
		return document.NULL, nil
	case *ast.InterpolatedString:
		return evalInterpolatedString(e, doc)
	case *ast.CallExpression:
		return evalCall(e, doc)
	case *ast.PrefixExpression:
		return evalPrefixExpression(e, doc)
	case *ast.InfixExpression:
		// Both operands are always evaluated, including for and/or.
		left, err := evalExpression(e.Left, doc)
		if err != nil {
			return nil, err
		}
		right, err := evalExpression(e.Right, doc)
		if err != nil {
			return nil, err
		}
		result, err := evalInfix(e.Operator, left, right)
		if err != nil {
			return nil, err.WithPosition(e.Token.Line, e.Token.Column)
		}
		return result, nil
	}
	return document.NULL, nil
}

func evalInterpolatedString(e *ast.InterpolatedString, doc document.Value) (document.Value, *rerrors.Error) {
	var out strings.Builder
	for _, part := range e.Parts {
		if part.Expr == nil {
			out.WriteString(part.Text)
			continue
		}
		v, err := evalExpression(part.Expr, doc)
		if err != nil {
			return nil, err
		}
		out.WriteString(Stringify(v))
	}
	return &document.String{Value: out.String()}, nil
}

func evalPrefixExpression(e *ast.PrefixExpression, doc document.Value) (document.Value, *rerrors.Error) {
	operand, err := evalExpression(e.Right, doc)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "not":
		return document.Bool(!IsTruthy(operand)), nil
	case "-":
		switch v := operand.(type) {
		case *document.Integer:
			return &document.Integer{Value: -v.Value}, nil
		case *document.Float:
			return &document.Float{Value: -v.Value}, nil
		}
		return nil, rerrors.NewWithPosition("OP-0004", e.Token.Line, e.Token.Column,
			map[string]any{"Type": string(operand.Type())})
	}
	return nil, rerrors.NewWithPosition("OP-0001", e.Token.Line, e.Token.Column,
		map[string]any{"LeftType": "", "Operator": e.Operator, "RightType": string(operand.Type())})
}

// Stringify renders a value the way string concatenation, interpolation
// and to_string all see it.
func Stringify(v document.Value) string {
	return v.Inspect()
}
