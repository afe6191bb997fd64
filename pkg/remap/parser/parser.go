// Package parser turns a token stream into an immutable AST. Statements
// are parsed by a small recursive-descent grammar keyed on the leading
// keyword; expressions use Pratt parsing with a precedence table.
package parser

import (
	"fmt"
	"strconv"

	"github.com/remaplang/remap/pkg/remap/ast"
	rerrors "github.com/remaplang/remap/pkg/remap/errors"
	"github.com/remaplang/remap/pkg/remap/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	LOGIC_OR  // or
	LOGIC_AND // and
	COMPARE   // == != < <= > >= (single level, non-chaining)
	SUM       // + -
	PRODUCT   // * / %
	PREFIX    // -x, not x
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.EQ:       COMPARE,
	lexer.NOT_EQ:   COMPARE,
	lexer.LT:       COMPARE,
	lexer.GT:       COMPARE,
	lexer.LTE:      COMPARE,
	lexer.GTE:      COMPARE,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.SLASH:    PRODUCT,
	lexer.ASTERISK: PRODUCT,
	lexer.PERCENT:  PRODUCT,
}

// castTypes maps canonical and alias spellings of cast type names to the
// canonical name.
var castTypes = map[string]string{
	"int":     "int",
	"integer": "int",
	"float":   "float",
	"number":  "float",
	"string":  "string",
	"str":     "string",
	"bool":    "bool",
	"boolean": "bool",
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*rerrors.Error

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.INTERP_STRING, p.parseInterpolatedString)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NULL, p.parseNull)
	p.registerPrefix(lexer.DOT, p.parsePathExpression)
	p.registerPrefix(lexer.IDENT, p.parseIdentExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.SLASH, lexer.ASTERISK, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE,
		lexer.AND, lexer.OR,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse is a convenience that lexes and parses src, returning the program
// or the first error (lexical or syntactic).
func Parse(src string) (*ast.Program, *rerrors.Error) {
	p := New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return program, nil
}

// Errors returns parser errors as strings (convenience method for tests).
// Prefer StructuredErrors() for production code.
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		if err.Line > 0 {
			result[i] = fmt.Sprintf("line %d, column %d: %s", err.Line, err.Column, err.Message)
		} else {
			result[i] = err.Message
		}
	}
	return result
}

// StructuredErrors returns parser errors as structured Error objects.
func (p *Parser) StructuredErrors() []*rerrors.Error {
	return p.structuredErrors
}

// addError records a structured error. Only the first error is kept -
// later errors are usually cascading noise.
func (p *Parser) addError(err *rerrors.Error) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors, err)
}

func (p *Parser) errorAtCur(code string, data map[string]any) {
	p.addError(rerrors.NewWithPosition(code, p.curToken.Line, p.curToken.Column, data))
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances curToken and peekToken. An ILLEGAL token from the
// lexer is surfaced as a lexical error carrying the lexer's message.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == lexer.ILLEGAL {
		p.addError(&rerrors.Error{
			Class:   rerrors.ClassLex,
			Message: p.peekToken.Literal,
			Line:    p.peekToken.Line,
			Column:  p.peekToken.Column,
		})
		p.peekToken = lexer.Token{Type: lexer.EOF, Line: p.peekToken.Line, Column: p.peekToken.Column}
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expectPeek advances when the next token matches, else records an error.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(rerrors.NewWithPosition("PARSE-0001", p.peekToken.Line, p.peekToken.Column,
		map[string]any{"Expected": describeToken(t), "Got": tokenText(p.peekToken)}))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses the program and returns the AST
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	p.skipNewlines()
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.structuredErrors) > 0 {
			p.syncToNewline()
		}
		// Statements are separated by mandatory newlines.
		if !p.peekTokenIs(lexer.EOF) && !p.peekTokenIs(lexer.NEWLINE) {
			p.addError(rerrors.NewWithPosition("PARSE-0006", p.peekToken.Line, p.peekToken.Column, nil))
			p.syncToNewline()
		}
		p.nextToken()
		p.skipNewlines()
	}

	return program
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
}

// syncToNewline skips ahead to the next statement boundary after an error.
func (p *Parser) syncToNewline() {
	for !p.peekTokenIs(lexer.NEWLINE) && !p.peekTokenIs(lexer.EOF) {
		p.nextToken()
	}
}

// parseStatement parses one statement keyed on the leading keyword
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.RENAME:
		return p.parseRenameStatement()
	case lexer.SELECT:
		return p.parseSelectStatement()
	case lexer.DROP:
		return p.parseDropStatement()
	case lexer.SET:
		return p.parseSetStatement()
	case lexer.DEFAULT:
		return p.parseDefaultStatement()
	case lexer.CAST:
		return p.parseCastStatement()
	case lexer.FLATTEN:
		return p.parseFlattenStatement()
	case lexer.NEST:
		return p.parseNestStatement()
	case lexer.WHERE:
		return p.parseWhereStatement()
	case lexer.SORT:
		return p.parseSortStatement()
	case lexer.EACH:
		return p.parseEachStatement()
	case lexer.WHEN:
		return p.parseWhenStatement()
	case lexer.IDENT:
		// An unknown leading word is usually a typo of a statement keyword.
		err := rerrors.NewWithPosition("PARSE-0003", p.curToken.Line, p.curToken.Column,
			map[string]any{"Keyword": p.curToken.Literal})
		if suggestion := rerrors.FindClosestMatch(p.curToken.Literal, rerrors.StatementKeywords); suggestion != "" {
			err.Hints = append(err.Hints, "did you mean `"+suggestion+"`?")
		}
		p.addError(err)
		return nil
	default:
		p.errorAtCur("PARSE-0002", map[string]any{"Token": tokenText(p.curToken)})
		return nil
	}
}

func (p *Parser) parseRenameStatement() ast.Statement {
	stmt := &ast.RenameStatement{Token: p.curToken}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.From = p.parsePath()
	if stmt.From == nil {
		return nil
	}
	if !p.expectPeek(lexer.ARROW) {
		return nil
	}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.To = p.parsePath()
	if stmt.To == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseSelectStatement() ast.Statement {
	stmt := &ast.SelectStatement{Token: p.curToken}
	stmt.Paths = p.parsePathList()
	if stmt.Paths == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDropStatement() ast.Statement {
	stmt := &ast.DropStatement{Token: p.curToken}
	stmt.Paths = p.parsePathList()
	if stmt.Paths == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseSetStatement() ast.Statement {
	stmt := &ast.SetStatement{Token: p.curToken}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.Path = p.parsePath()
	if stmt.Path == nil {
		return nil
	}
	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDefaultStatement() ast.Statement {
	stmt := &ast.DefaultStatement{Token: p.curToken}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.Path = p.parsePath()
	if stmt.Path == nil {
		return nil
	}
	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseCastStatement() ast.Statement {
	stmt := &ast.CastStatement{Token: p.curToken}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.Path = p.parsePath()
	if stmt.Path == nil {
		return nil
	}
	if !p.expectPeek(lexer.AS) {
		return nil
	}
	p.nextToken()

	// The type name may be a bare identifier or a quoted string.
	var name string
	switch {
	case p.curTokenIs(lexer.IDENT) || p.curTokenIs(lexer.STRING):
		name = p.curToken.Literal
	default:
		p.errorAtCur("PARSE-0001", map[string]any{"Expected": "a type name", "Got": tokenText(p.curToken)})
		return nil
	}
	canonical, ok := castTypes[name]
	if !ok {
		err := rerrors.NewWithPosition("PARSE-0004", p.curToken.Line, p.curToken.Column,
			map[string]any{"Type": name})
		if suggestion := rerrors.FindClosestMatch(name, rerrors.CastTypeNames); suggestion != "" {
			err.Hints = append(err.Hints, "did you mean `"+suggestion+"`?")
		}
		p.addError(err)
		return nil
	}
	stmt.TargetType = canonical
	return stmt
}

func (p *Parser) parseFlattenStatement() ast.Statement {
	stmt := &ast.FlattenStatement{Token: p.curToken}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.Path = p.parsePath()
	if stmt.Path == nil {
		return nil
	}
	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken()
		if !p.peekTokenIs(lexer.IDENT) || p.peekToken.Literal != "prefix" {
			p.addError(rerrors.NewWithPosition("PARSE-0001", p.peekToken.Line, p.peekToken.Column,
				map[string]any{"Expected": "'prefix'", "Got": tokenText(p.peekToken)}))
			return nil
		}
		p.nextToken()
		if !p.expectPeek(lexer.STRING) {
			return nil
		}
		stmt.Prefix = p.curToken.Literal
		stmt.HasPrefix = true
	}
	return stmt
}

func (p *Parser) parseNestStatement() ast.Statement {
	stmt := &ast.NestStatement{Token: p.curToken}
	stmt.Paths = p.parsePathList()
	if stmt.Paths == nil {
		return nil
	}
	if !p.expectPeek(lexer.ARROW) {
		return nil
	}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.Target = p.parsePath()
	if stmt.Target == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhereStatement() ast.Statement {
	stmt := &ast.WhereStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseSortStatement() ast.Statement {
	stmt := &ast.SortStatement{Token: p.curToken}
	for {
		if !p.expectPeek(lexer.DOT) {
			return nil
		}
		path := p.parsePath()
		if path == nil {
			return nil
		}
		key := ast.SortKey{Path: path}
		if p.peekTokenIs(lexer.ASC) {
			p.nextToken()
		} else if p.peekTokenIs(lexer.DESC) {
			p.nextToken()
			key.Descending = true
		}
		stmt.Keys = append(stmt.Keys, key)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseEachStatement() ast.Statement {
	stmt := &ast.EachStatement{Token: p.curToken}
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	stmt.Path = p.parsePath()
	if stmt.Path == nil {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhenStatement() ast.Statement {
	stmt := &ast.WhenStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseBlock parses the `{ statements }` body of each/when. The opening
// brace is the current token on entry; the closing brace is the current
// token on exit.
func (p *Parser) parseBlock() *ast.Program {
	block := &ast.Program{Statements: []ast.Statement{}}
	p.nextToken()
	p.skipNewlines()
	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			p.errorAtCur("PARSE-0001", map[string]any{"Expected": "'}'", "Got": "end of input"})
			return nil
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if len(p.structuredErrors) > 0 {
			return nil
		}
		if !p.peekTokenIs(lexer.NEWLINE) && !p.peekTokenIs(lexer.RBRACE) {
			p.addError(rerrors.NewWithPosition("PARSE-0006", p.peekToken.Line, p.peekToken.Column, nil))
			return nil
		}
		p.nextToken()
		p.skipNewlines()
	}
	return block
}

// parsePathList parses one or more comma-separated paths.
func (p *Parser) parsePathList() []*ast.Path {
	var paths []*ast.Path
	for {
		if !p.expectPeek(lexer.DOT) {
			return nil
		}
		path := p.parsePath()
		if path == nil {
			return nil
		}
		paths = append(paths, path)
		if !p.peekTokenIs(lexer.COMMA) {
			return paths
		}
		p.nextToken()
	}
}

// parsePath parses a path whose leading '.' is the current token.
// Grammar: '.' Segment ('.' Segment | '[' ... ']')*, where a segment is an
// identifier, any keyword (fields may be named `sort`, `when`, ...), or a
// bracketed index / wildcard / quoted key.
func (p *Parser) parsePath() *ast.Path {
	path := &ast.Path{Token: p.curToken}

	seg := p.parseSegmentAfterDot()
	if seg == nil {
		return nil
	}
	path.Segments = append(path.Segments, seg)

	for {
		if p.peekTokenIs(lexer.DOT) {
			p.nextToken()
			seg := p.parseSegmentAfterDot()
			if seg == nil {
				return nil
			}
			path.Segments = append(path.Segments, seg)
			continue
		}
		if p.peekTokenIs(lexer.LBRACKET) {
			p.nextToken()
			seg := p.parseBracketSegment()
			if seg == nil {
				return nil
			}
			path.Segments = append(path.Segments, seg)
			continue
		}
		return path
	}
}

// parseSegmentAfterDot parses the segment following a '.' (current token).
func (p *Parser) parseSegmentAfterDot() ast.PathSegment {
	switch {
	case p.peekTokenIs(lexer.IDENT) || lexer.IsKeyword(p.peekToken.Type):
		p.nextToken()
		return ast.FieldSegment{Name: p.curToken.Literal}
	case p.peekTokenIs(lexer.LBRACKET):
		p.nextToken()
		return p.parseBracketSegment()
	default:
		p.addError(rerrors.NewWithPosition("PARSE-0001", p.peekToken.Line, p.peekToken.Column,
			map[string]any{"Expected": "a field name or '['", "Got": tokenText(p.peekToken)}))
		return nil
	}
}

// parseBracketSegment parses '[' (IntLit | '*' | StringLit) ']' with the
// '[' as the current token.
func (p *Parser) parseBracketSegment() ast.PathSegment {
	var seg ast.PathSegment
	switch {
	case p.peekTokenIs(lexer.INT):
		p.nextToken()
		n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			p.errorAtCur("PARSE-0002", map[string]any{"Token": p.curToken.Literal})
			return nil
		}
		seg = ast.IndexSegment{Index: n}
	case p.peekTokenIs(lexer.ASTERISK):
		p.nextToken()
		seg = ast.WildcardSegment{}
	case p.peekTokenIs(lexer.STRING):
		p.nextToken()
		seg = ast.FieldSegment{Name: p.curToken.Literal}
	default:
		p.addError(rerrors.NewWithPosition("PARSE-0001", p.peekToken.Line, p.peekToken.Column,
			map[string]any{"Expected": "an index, '*', or a quoted key", "Got": tokenText(p.peekToken)}))
		return nil
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return seg
}

// ============================================================================
// Expressions
// ============================================================================

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorAtCur("PARSE-0002", map[string]any{"Token": tokenText(p.curToken)})
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorAtCur("LEX-0004", map[string]any{"Literal": p.curToken.Literal})
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorAtCur("LEX-0004", map[string]any{"Literal": p.curToken.Literal})
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseInterpolatedString parses the expression sources the lexer captured
// verbatim inside "{...}" segments.
func (p *Parser) parseInterpolatedString() ast.Expression {
	node := &ast.InterpolatedString{Token: p.curToken}
	for _, part := range p.curToken.Parts {
		if !part.IsExpr {
			node.Parts = append(node.Parts, ast.InterpolatedPart{Text: part.Text})
			continue
		}
		expr, err := parseEmbeddedExpression(part.Expr)
		if err != nil {
			// Report at the position of the embedded source.
			p.addError(err.WithPosition(part.Line, part.Column))
			return nil
		}
		node.Parts = append(node.Parts, ast.InterpolatedPart{Expr: expr})
	}
	return node
}

// parseEmbeddedExpression parses a single expression from an interpolation
// segment's raw source.
func parseEmbeddedExpression(src string) (ast.Expression, *rerrors.Error) {
	sub := New(lexer.New(src))
	if len(sub.structuredErrors) > 0 {
		return nil, sub.structuredErrors[0]
	}
	expr := sub.parseExpression(LOWEST)
	if len(sub.structuredErrors) > 0 {
		return nil, sub.structuredErrors[0]
	}
	if expr == nil {
		return nil, rerrors.New("PARSE-0002", map[string]any{"Token": src})
	}
	if !sub.peekTokenIs(lexer.EOF) && !sub.peekTokenIs(lexer.NEWLINE) {
		return nil, rerrors.New("PARSE-0002", map[string]any{"Token": tokenText(sub.peekToken)})
	}
	return expr, nil
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

// parsePathExpression parses a path used as an rvalue: `.a.b[0]`
func (p *Parser) parsePathExpression() ast.Expression {
	path := p.parsePath()
	if path == nil {
		return nil
	}
	return path
}

// parseIdentExpression resolves a bare identifier: with a following '(' it
// is a function call, otherwise it is a one-segment path reference. A bare
// identifier is never a zero-argument call.
func (p *Parser) parseIdentExpression() ast.Expression {
	tok := p.curToken
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken() // consume '('
		call := &ast.CallExpression{Token: tok, Function: tok.Literal}
		call.Arguments = p.parseCallArguments()
		if call.Arguments == nil {
			return nil
		}
		return call
	}
	return &ast.Path{Token: tok, Segments: []ast.PathSegment{ast.FieldSegment{Name: tok.Literal}}}
}

// parseCallArguments parses the comma-separated argument list; the '(' is
// the current token on entry, the ')' on exit.
func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil
	}
	args = append(args, arg)
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}
	precedence := precedences[p.curToken.Type]
	isCompare := precedence == COMPARE
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	// Comparisons do not chain: `a == b == c` is a syntax error.
	if isCompare && precedences[p.peekToken.Type] == COMPARE {
		p.addError(rerrors.NewWithPosition("PARSE-0002", p.peekToken.Line, p.peekToken.Column,
			map[string]any{"Token": tokenText(p.peekToken)}))
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}

// tokenText renders a token for error messages.
func tokenText(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.NEWLINE:
		return "newline"
	case lexer.STRING, lexer.INTERP_STRING:
		return strconv.Quote(tok.Literal)
	default:
		return tok.Literal
	}
}

// describeToken names a token type for "expected X" messages.
func describeToken(t lexer.TokenType) string {
	switch t {
	case lexer.DOT:
		return "a path starting with '.'"
	case lexer.ARROW:
		return "'->'"
	case lexer.ASSIGN:
		return "'='"
	case lexer.AS:
		return "'as'"
	case lexer.LBRACE:
		return "'{'"
	case lexer.RBRACE:
		return "'}'"
	case lexer.RBRACKET:
		return "']'"
	case lexer.RPAREN:
		return "')'"
	case lexer.STRING:
		return "a string"
	case lexer.NEWLINE:
		return "a newline"
	default:
		return t.String()
	}
}
