// Package ast defines the abstract syntax tree for the remap mapping
// language. A compiled Program is immutable and may be applied to any
// number of documents.
package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/remaplang/remap/pkg/remap/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node: an ordered list of statements applied
// left to right.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// ============================================================================
// Paths
// ============================================================================

// PathSegment is one step of a path: a field name, an array index, or the
// wildcard that broadcasts over every array element.
type PathSegment interface {
	String() string
	segmentNode()
}

// FieldSegment addresses a map key
type FieldSegment struct {
	Name string
}

func (f FieldSegment) segmentNode() {}
func (f FieldSegment) String() string {
	if needsQuoting(f.Name) {
		return "[" + strconv.Quote(f.Name) + "]"
	}
	return f.Name
}

// IndexSegment addresses an array element; negative offsets count from
// the end.
type IndexSegment struct {
	Index int64
}

func (i IndexSegment) segmentNode()   {}
func (i IndexSegment) String() string { return "[" + strconv.FormatInt(i.Index, 10) + "]" }

// WildcardSegment broadcasts over every element of an array
type WildcardSegment struct{}

func (w WildcardSegment) segmentNode()   {}
func (w WildcardSegment) String() string { return "[*]" }

func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i, r := range name {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return true
	}
	return false
}

// Path is an expression addressing a location inside a document. It serves
// both as an lvalue (set/remove target) and an rvalue (resolve).
type Path struct {
	Token    lexer.Token // the leading '.' token
	Segments []PathSegment
}

func (p *Path) expressionNode()      {}
func (p *Path) TokenLiteral() string { return p.Token.Literal }
func (p *Path) String() string {
	var out bytes.Buffer
	for _, seg := range p.Segments {
		out.WriteString(".")
		out.WriteString(seg.String())
	}
	return out.String()
}

// LastField returns the name of the final field segment, used by select
// and nest to key their output. ok is false when the path does not end in
// a field segment.
func (p *Path) LastField() (string, bool) {
	if len(p.Segments) == 0 {
		return "", false
	}
	f, ok := p.Segments[len(p.Segments)-1].(FieldSegment)
	if !ok {
		return "", false
	}
	return f.Name, true
}

// ============================================================================
// Expressions
// ============================================================================

// IntegerLiteral represents integer literals like 42
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// FloatLiteral represents float literals like 3.14 or 1e9
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// StringLiteral represents plain string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// InterpolatedPart is one parsed segment of an interpolated string.
type InterpolatedPart struct {
	Text string     // literal text (when Expr is nil)
	Expr Expression // embedded expression (when non-nil)
}

// InterpolatedString represents a string literal with embedded {expr}
// segments. The embedded sources are captured verbatim by the lexer and
// parsed into expressions when the enclosing program is parsed.
type InterpolatedString struct {
	Token lexer.Token
	Parts []InterpolatedPart
}

func (is *InterpolatedString) expressionNode()      {}
func (is *InterpolatedString) TokenLiteral() string { return is.Token.Literal }
func (is *InterpolatedString) String() string       { return is.Token.Literal }

// BooleanLiteral represents true and false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NullLiteral represents null
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// PrefixExpression represents unary operators: `not x` and `-x`
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	if pe.Operator == "not" {
		return "(not " + pe.Right.String() + ")"
	}
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents binary operators
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// CallExpression represents builtin function calls like lower(.name).
// A bare identifier without parentheses is a one-segment path, never a
// zero-argument call.
type CallExpression struct {
	Token     lexer.Token // the function name token
	Function  string
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Function + "(" + strings.Join(args, ", ") + ")"
}

// ============================================================================
// Statements
// ============================================================================

// RenameStatement: `rename .from -> .to`
type RenameStatement struct {
	Token lexer.Token
	From  *Path
	To    *Path
}

func (rs *RenameStatement) statementNode()       {}
func (rs *RenameStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RenameStatement) String() string {
	return "rename " + rs.From.String() + " -> " + rs.To.String()
}

// SelectStatement: `select .a, .b`
type SelectStatement struct {
	Token lexer.Token
	Paths []*Path
}

func (ss *SelectStatement) statementNode()       {}
func (ss *SelectStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SelectStatement) String() string {
	return "select " + joinPaths(ss.Paths)
}

// DropStatement: `drop .a, .b`
type DropStatement struct {
	Token lexer.Token
	Paths []*Path
}

func (ds *DropStatement) statementNode()       {}
func (ds *DropStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DropStatement) String() string {
	return "drop " + joinPaths(ds.Paths)
}

// SetStatement: `set .path = expr`
type SetStatement struct {
	Token lexer.Token
	Path  *Path
	Value Expression
}

func (ss *SetStatement) statementNode()       {}
func (ss *SetStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SetStatement) String() string {
	return "set " + ss.Path.String() + " = " + ss.Value.String()
}

// DefaultStatement: `default .path = expr` — set only when the path is
// absent or null.
type DefaultStatement struct {
	Token lexer.Token
	Path  *Path
	Value Expression
}

func (ds *DefaultStatement) statementNode()       {}
func (ds *DefaultStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DefaultStatement) String() string {
	return "default " + ds.Path.String() + " = " + ds.Value.String()
}

// CastStatement: `cast .path as type`
type CastStatement struct {
	Token      lexer.Token
	Path       *Path
	TargetType string // canonical: "int", "float", "string", "bool"
}

func (cs *CastStatement) statementNode()       {}
func (cs *CastStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *CastStatement) String() string {
	return "cast " + cs.Path.String() + " as " + cs.TargetType
}

// FlattenStatement: `flatten .path` or `flatten .path -> prefix "p"`
type FlattenStatement struct {
	Token     lexer.Token
	Path      *Path
	Prefix    string
	HasPrefix bool
}

func (fs *FlattenStatement) statementNode()       {}
func (fs *FlattenStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FlattenStatement) String() string {
	if fs.HasPrefix {
		return "flatten " + fs.Path.String() + " -> prefix " + strconv.Quote(fs.Prefix)
	}
	return "flatten " + fs.Path.String()
}

// NestStatement: `nest .a, .b -> .target`
type NestStatement struct {
	Token  lexer.Token
	Paths  []*Path
	Target *Path
}

func (ns *NestStatement) statementNode()       {}
func (ns *NestStatement) TokenLiteral() string { return ns.Token.Literal }
func (ns *NestStatement) String() string {
	return "nest " + joinPaths(ns.Paths) + " -> " + ns.Target.String()
}

// WhereStatement: `where expr`
type WhereStatement struct {
	Token     lexer.Token
	Condition Expression
}

func (ws *WhereStatement) statementNode()       {}
func (ws *WhereStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhereStatement) String() string {
	return "where " + ws.Condition.String()
}

// SortKey is one (path, direction) pair of a sort statement.
type SortKey struct {
	Path       *Path
	Descending bool
}

func (sk SortKey) String() string {
	if sk.Descending {
		return sk.Path.String() + " desc"
	}
	return sk.Path.String() + " asc"
}

// SortStatement: `sort .k1 asc, .k2 desc`
type SortStatement struct {
	Token lexer.Token
	Keys  []SortKey
}

func (ss *SortStatement) statementNode()       {}
func (ss *SortStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SortStatement) String() string {
	keys := make([]string, len(ss.Keys))
	for i, k := range ss.Keys {
		keys[i] = k.String()
	}
	return "sort " + strings.Join(keys, ", ")
}

// EachStatement: `each .path { ... }` — apply the sub-program to every
// element of the array at path.
type EachStatement struct {
	Token lexer.Token
	Path  *Path
	Body  *Program
}

func (es *EachStatement) statementNode()       {}
func (es *EachStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EachStatement) String() string {
	return "each " + es.Path.String() + " " + blockString(es.Body)
}

// WhenStatement: `when expr { ... }` — apply the sub-program to the whole
// document when the condition is truthy.
type WhenStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      *Program
}

func (ws *WhenStatement) statementNode()       {}
func (ws *WhenStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhenStatement) String() string {
	return "when " + ws.Condition.String() + " " + blockString(ws.Body)
}

func joinPaths(paths []*Path) string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return strings.Join(out, ", ")
}

func blockString(body *Program) string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range body.Statements {
		out.WriteString(fmt.Sprintf("\t%s\n", s.String()))
	}
	out.WriteString("}")
	return out.String()
}
