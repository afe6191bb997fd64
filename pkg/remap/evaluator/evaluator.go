// Package evaluator executes a compiled mapping program against a
// document. Programs are immutable after parsing, so one program may be
// run concurrently against independent documents.
package evaluator

import (
	"github.com/remaplang/remap/pkg/remap/ast"
	"github.com/remaplang/remap/pkg/remap/document"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

// Run applies every statement of the program in order. Each statement
// produces a fresh document, so a failure part-way through never leaves
// a half-transformed result visible to the caller.
func Run(program *ast.Program, doc document.Value) (document.Value, *rerrors.Error) {
	current := doc
	for _, stmt := range program.Statements {
		next, err := evalStatement(stmt, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func evalStatement(stmt ast.Statement, doc document.Value) (document.Value, *rerrors.Error) {
	switch s := stmt.(type) {
	case *ast.RenameStatement:
		return evalRename(s, doc)
	case *ast.SelectStatement:
		return evalSelect(s, doc)
	case *ast.DropStatement:
		return evalDrop(s, doc)
	case *ast.SetStatement:
		return evalSet(s, doc)
	case *ast.DefaultStatement:
		return evalDefault(s, doc)
	case *ast.CastStatement:
		return evalCast(s, doc)
	case *ast.FlattenStatement:
		return evalFlatten(s, doc)
	case *ast.NestStatement:
		return evalNest(s, doc)
	case *ast.WhereStatement:
		return evalWhere(s, doc)
	case *ast.SortStatement:
		return evalSort(s, doc)
	case *ast.EachStatement:
		return evalEach(s, doc)
	case *ast.WhenStatement:
		return evalWhen(s, doc)
	}
	return doc, nil
}

// IsTruthy reports the boolean reading of a value: null and false are
// falsy, numbers are truthy when nonzero, strings and containers when
// nonempty.
func IsTruthy(v document.Value) bool {
	switch v := v.(type) {
	case *document.Null:
		return false
	case *document.Boolean:
		return v.Value
	case *document.Integer:
		return v.Value != 0
	case *document.Float:
		return v.Value != 0
	case *document.String:
		return v.Value != ""
	case *document.Bytes:
		return len(v.Value) > 0
	case *document.Array:
		return len(v.Elements) > 0
	case *document.Map:
		return v.Len() > 0
	}
	return false
}
