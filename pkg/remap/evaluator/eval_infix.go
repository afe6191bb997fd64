package evaluator

import (
	"math"
	"strings"

	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

// evalInfix dispatches a binary operator over already-evaluated operands.
func evalInfix(operator string, left, right document.Value) (document.Value, *rerrors.Error) {
	switch operator {
	case "and":
		return document.Bool(IsTruthy(left) && IsTruthy(right)), nil
	case "or":
		return document.Bool(IsTruthy(left) || IsTruthy(right)), nil
	case "==":
		return document.Bool(document.Equal(left, right)), nil
	case "!=":
		return document.Bool(!document.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return evalOrdering(operator, left, right), nil
	case "+":
		// Either side being a string turns + into concatenation.
		if isString(left) || isString(right) {
			return &document.String{Value: Stringify(left) + Stringify(right)}, nil
		}
		return evalArithmetic(operator, left, right)
	case "-", "*", "/", "%":
		return evalArithmetic(operator, left, right)
	}
	return nil, rerrors.New("OP-0001", map[string]any{
		"LeftType": string(left.Type()), "Operator": operator, "RightType": string(right.Type()),
	})
}

func isString(v document.Value) bool {
	_, ok := v.(*document.String)
	return ok
}

// evalOrdering compares two values. Ordering is only defined for numeric
// pairs and string pairs; any other pairing yields false rather than an
// error.
func evalOrdering(operator string, left, right document.Value) document.Value {
	if lf, ok := numericValue(left); ok {
		if rf, ok := numericValue(right); ok {
			return document.Bool(orderingHolds(operator, compareFloats(lf, rf)))
		}
		return document.FALSE
	}
	if ls, ok := left.(*document.String); ok {
		if rs, ok := right.(*document.String); ok {
			return document.Bool(orderingHolds(operator, strings.Compare(ls.Value, rs.Value)))
		}
	}
	return document.FALSE
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func orderingHolds(operator string, cmp int) bool {
	switch operator {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// evalArithmetic handles + - * / % over numbers. Int/Int stays Int, any
// Float operand widens the result to Float.
func evalArithmetic(operator string, left, right document.Value) (document.Value, *rerrors.Error) {
	li, lIsInt := left.(*document.Integer)
	ri, rIsInt := right.(*document.Integer)
	if lIsInt && rIsInt {
		return evalIntegerArithmetic(operator, li.Value, ri.Value)
	}

	lf, lok := numericValue(left)
	rf, rok := numericValue(right)
	if !lok || !rok {
		return nil, rerrors.New("OP-0001", map[string]any{
			"LeftType": string(left.Type()), "Operator": operator, "RightType": string(right.Type()),
		})
	}
	return evalFloatArithmetic(operator, lf, rf)
}

func evalIntegerArithmetic(operator string, a, b int64) (document.Value, *rerrors.Error) {
	switch operator {
	case "+":
		return &document.Integer{Value: a + b}, nil
	case "-":
		return &document.Integer{Value: a - b}, nil
	case "*":
		return &document.Integer{Value: a * b}, nil
	case "/":
		if b == 0 {
			return nil, rerrors.New("OP-0002", nil)
		}
		return &document.Integer{Value: a / b}, nil
	case "%":
		if b == 0 {
			return nil, rerrors.New("OP-0003", nil)
		}
		return &document.Integer{Value: a % b}, nil
	}
	return nil, rerrors.New("OP-0001", map[string]any{
		"LeftType": "INTEGER", "Operator": operator, "RightType": "INTEGER",
	})
}

func evalFloatArithmetic(operator string, a, b float64) (document.Value, *rerrors.Error) {
	switch operator {
	case "+":
		return &document.Float{Value: a + b}, nil
	case "-":
		return &document.Float{Value: a - b}, nil
	case "*":
		return &document.Float{Value: a * b}, nil
	case "/":
		if b == 0 {
			return nil, rerrors.New("OP-0002", nil)
		}
		return &document.Float{Value: a / b}, nil
	case "%":
		if b == 0 {
			return nil, rerrors.New("OP-0003", nil)
		}
		return &document.Float{Value: math.Mod(a, b)}, nil
	}
	return nil, rerrors.New("OP-0001", map[string]any{
		"LeftType": "FLOAT", "Operator": operator, "RightType": "FLOAT",
	})
}
