// Package lexer turns mapping source text into a token stream with
// 1-based line/column positions.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	rerrors "github.com/remaplang/remap/pkg/remap/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE // one token per run of newlines

	// Identifiers and literals
	IDENT         // age, user_name, ...
	INT           // 42
	FLOAT         // 3.14, 1e9
	STRING        // "hello"
	INTERP_STRING // "hello {.name}"

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	ARROW    // ->

	// Delimiters
	COMMA    // ,
	DOT      // .
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// Keywords
	RENAME
	SELECT
	DROP
	SET
	DEFAULT
	CAST
	AS
	WHERE
	SORT
	EACH
	WHEN
	NOT
	AND
	OR
	FLATTEN
	NEST
	ASC
	DESC
	TRUE
	FALSE
	NULL
)

// StringPart is one segment of an interpolated string: either literal text
// or the raw, unparsed source of an embedded expression.
type StringPart struct {
	Text   string // decoded literal text (when IsExpr is false)
	Expr   string // raw expression source (when IsExpr is true)
	IsExpr bool
	Line   int // position of the expression source, for error reporting
	Column int
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Parts   []StringPart // set for INTERP_STRING tokens
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case INTERP_STRING:
		return "INTERP_STRING"
	case ASSIGN:
		return "ASSIGN"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case ASTERISK:
		return "ASTERISK"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LTE:
		return "LTE"
	case GTE:
		return "GTE"
	case EQ:
		return "EQ"
	case NOT_EQ:
		return "NOT_EQ"
	case ARROW:
		return "ARROW"
	case COMMA:
		return "COMMA"
	case DOT:
		return "DOT"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case RENAME:
		return "RENAME"
	case SELECT:
		return "SELECT"
	case DROP:
		return "DROP"
	case SET:
		return "SET"
	case DEFAULT:
		return "DEFAULT"
	case CAST:
		return "CAST"
	case AS:
		return "AS"
	case WHERE:
		return "WHERE"
	case SORT:
		return "SORT"
	case EACH:
		return "EACH"
	case WHEN:
		return "WHEN"
	case NOT:
		return "NOT"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case FLATTEN:
		return "FLATTEN"
	case NEST:
		return "NEST"
	case ASC:
		return "ASC"
	case DESC:
		return "DESC"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NULL:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// Keywords map for identifying language keywords
var keywords = map[string]TokenType{
	"rename":  RENAME,
	"select":  SELECT,
	"drop":    DROP,
	"set":     SET,
	"default": DEFAULT,
	"cast":    CAST,
	"as":      AS,
	"where":   WHERE,
	"sort":    SORT,
	"each":    EACH,
	"when":    WHEN,
	"not":     NOT,
	"and":     AND,
	"or":      OR,
	"flatten": FLATTEN,
	"nest":    NEST,
	"asc":     ASC,
	"desc":    DESC,
	"true":    TRUE,
	"false":   FALSE,
	"null":    NULL,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether a token type is one of the language keywords.
// Any keyword is also accepted as a bare field name in a path.
func IsKeyword(tt TokenType) bool {
	return tt >= RENAME && tt <= NULL
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input         string
	position      int  // current position in input (points to current char)
	readPosition  int  // current reading position in input (after current char)
	ch            byte // current char under examination (first byte)
	chRune        rune // current character as a rune
	chSize        int  // byte size of current character
	line          int
	column        int
	lastTokenType TokenType // previous emitted token, for the minus-folding rule
	emittedAny    bool      // suppresses a NEWLINE token at start of input
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input and returns the token vector, or the
// first lexical error.
func Tokenize(input string) ([]Token, *rerrors.Error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return nil, &rerrors.Error{
				Class:   rerrors.ClassLex,
				Message: tok.Literal,
				Line:    tok.Line,
				Column:  tok.Column,
			}
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// readChar reads the next character and advances position. ASCII is the
// fast path; multi-byte runes are decoded for Unicode identifiers.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL represents EOF
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
		l.position = l.readPosition
		l.readPosition++
		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = b
	l.chRune = r
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipSpaceAndComments()

	// Collapse a run of newlines (and interleaved comments/whitespace)
	// into a single NEWLINE token. None is emitted at start of input.
	if l.ch == '\n' {
		line, col := l.line, l.column
		for {
			if l.ch == '\n' {
				l.readChar()
				l.skipSpaceAndComments()
				continue
			}
			break
		}
		if !l.emittedAny {
			return l.NextToken()
		}
		return l.emit(Token{Type: NEWLINE, Literal: "\n", Line: line, Column: col})
	}

	switch l.ch {
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: l.line, Column: l.column}
	case '=':
		if l.peekChar() == '=' {
			line, col := l.line, l.column
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Line: line, Column: col}
		} else {
			tok = l.newToken(ASSIGN)
		}
	case '!':
		if l.peekChar() == '=' {
			line, col := l.line, l.column
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: "!=", Line: line, Column: col}
		} else {
			return l.errorToken(rerrors.New("LEX-0005", map[string]any{"Char": "!"}).Message, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			line, col := l.line, l.column
			l.readChar()
			tok = Token{Type: LTE, Literal: "<=", Line: line, Column: col}
		} else {
			tok = l.newToken(LT)
		}
	case '>':
		if l.peekChar() == '=' {
			line, col := l.line, l.column
			l.readChar()
			tok = Token{Type: GTE, Literal: ">=", Line: line, Column: col}
		} else {
			tok = l.newToken(GT)
		}
	case '+':
		tok = l.newToken(PLUS)
	case '-':
		return l.lexMinus()
	case '*':
		tok = l.newToken(ASTERISK)
	case '/':
		tok = l.newToken(SLASH)
	case '%':
		tok = l.newToken(PERCENT)
	case ',':
		tok = l.newToken(COMMA)
	case '.':
		tok = l.newToken(DOT)
	case '(':
		tok = l.newToken(LPAREN)
	case ')':
		tok = l.newToken(RPAREN)
	case '[':
		tok = l.newToken(LBRACKET)
	case ']':
		tok = l.newToken(RBRACKET)
	case '{':
		tok = l.newToken(LBRACE)
	case '}':
		tok = l.newToken(RBRACE)
	case '"':
		return l.lexString()
	default:
		if isDigit(l.ch) {
			return l.lexNumber(false, l.line, l.column)
		}
		if isIdentStart(l.chRune) {
			return l.lexIdentifier()
		}
		return l.errorToken(rerrors.New("LEX-0005", map[string]any{"Char": string(l.chRune)}).Message, l.line, l.column)
	}

	l.readChar()
	return l.emit(tok)
}

func (l *Lexer) newToken(tt TokenType) Token {
	return Token{Type: tt, Literal: string(l.chRune), Line: l.line, Column: l.column}
}

func (l *Lexer) emit(tok Token) Token {
	l.lastTokenType = tok.Type
	l.emittedAny = true
	return tok
}

func (l *Lexer) errorToken(msg string, line, col int) Token {
	return Token{Type: ILLEGAL, Literal: msg, Line: line, Column: col}
}

// skipSpaceAndComments skips spaces, tabs, carriage returns, and `#`
// comments (to end of line). Newlines are left for NextToken to handle.
func (l *Lexer) skipSpaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// lexMinus resolves the three faces of '-': the arrow `->`, a negative
// number literal, or the binary minus operator. A minus directly followed
// by a digit folds into the number unless the previous token could end an
// operand (identifier, literal, ')' or ']').
func (l *Lexer) lexMinus() Token {
	line, col := l.line, l.column
	if l.peekChar() == '>' {
		l.readChar()
		l.readChar()
		return l.emit(Token{Type: ARROW, Literal: "->", Line: line, Column: col})
	}
	if isDigit(l.peekChar()) && !isOperandEnd(l.lastTokenType) {
		l.readChar() // consume '-'
		return l.lexNumber(true, line, col)
	}
	l.readChar()
	return l.emit(Token{Type: MINUS, Literal: "-", Line: line, Column: col})
}

// isOperandEnd reports whether a token can terminate an operand, making a
// following minus a binary operator rather than a sign.
func isOperandEnd(tt TokenType) bool {
	switch tt {
	case IDENT, INT, FLOAT, STRING, INTERP_STRING, TRUE, FALSE, NULL, RPAREN, RBRACKET:
		return true
	}
	return false
}

// lexNumber scans an integer or float literal. Underscore separators are
// accepted and ignored; a decimal point counts only when followed by a
// digit (so `.field` access after a number still lexes as DOT); an
// exponent or decimal point makes the literal a float.
func (l *Lexer) lexNumber(negative bool, line, col int) Token {
	var sb strings.Builder
	if negative {
		sb.WriteByte('-')
	}
	isFloat := false

	readDigits := func() {
		for isDigit(l.ch) || l.ch == '_' {
			if l.ch != '_' {
				sb.WriteByte(l.ch)
			}
			l.readChar()
		}
	}

	readDigits()

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		sb.WriteByte('.')
		l.readChar()
		readDigits()
		// A second decimal point is always malformed.
		if l.ch == '.' && isDigit(l.peekChar()) {
			return l.errorToken(rerrors.New("LEX-0004", map[string]any{"Literal": sb.String() + "."}).Message, line, col)
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		sb.WriteByte(l.ch)
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			sb.WriteByte(l.ch)
			l.readChar()
		}
		if !isDigit(l.ch) {
			return l.errorToken(rerrors.New("LEX-0004", map[string]any{"Literal": sb.String()}).Message, line, col)
		}
		readDigits()
	}

	tt := INT
	if isFloat {
		tt = FLOAT
	}
	return l.emit(Token{Type: tt, Literal: sb.String(), Line: line, Column: col})
}

// lexIdentifier scans an identifier or keyword.
func (l *Lexer) lexIdentifier() Token {
	line, col := l.line, l.column
	start := l.position
	for isIdentPart(l.chRune) {
		l.readChar()
	}
	literal := l.input[start:l.position]
	return l.emit(Token{Type: LookupIdent(literal), Literal: literal, Line: line, Column: col})
}

// lexString scans a double-quoted string. Escapes: \" \\ \n \t \r \{ and
// \uXXXX (BMP). An unescaped `{` opens an interpolation segment whose raw,
// brace-balanced source is captured verbatim for the parser to handle.
func (l *Lexer) lexString() Token {
	line, col := l.line, l.column
	l.readChar() // consume opening quote

	var parts []StringPart
	var text strings.Builder
	raw := strings.Builder{}
	raw.WriteByte('"')

	flushText := func() {
		if text.Len() > 0 {
			parts = append(parts, StringPart{Text: text.String()})
			text.Reset()
		}
	}

	for {
		switch {
		case l.ch == 0 || l.ch == '\n':
			return l.errorToken(rerrors.New("LEX-0001", nil).Message, line, col)
		case l.ch == '"':
			raw.WriteByte('"')
			l.readChar()
			hasExpr := false
			for _, p := range parts {
				if p.IsExpr {
					hasExpr = true
					break
				}
			}
			if hasExpr {
				flushText()
				return l.emit(Token{Type: INTERP_STRING, Literal: raw.String(), Line: line, Column: col, Parts: parts})
			}
			return l.emit(Token{Type: STRING, Literal: text.String(), Line: line, Column: col})
		case l.ch == '\\':
			raw.WriteByte('\\')
			l.readChar()
			switch l.ch {
			case '"':
				text.WriteByte('"')
			case '\\':
				text.WriteByte('\\')
			case 'n':
				text.WriteByte('\n')
			case 't':
				text.WriteByte('\t')
			case 'r':
				text.WriteByte('\r')
			case '{':
				text.WriteByte('{')
			case 'u':
				raw.WriteByte('u')
				r, ok := l.readUnicodeEscape(&raw)
				if !ok {
					return l.errorToken(rerrors.New("LEX-0003", nil).Message, line, col)
				}
				text.WriteRune(r)
				continue
			default:
				if l.ch == 0 {
					return l.errorToken(rerrors.New("LEX-0001", nil).Message, line, col)
				}
				return l.errorToken(rerrors.New("LEX-0002", map[string]any{"Escape": string(l.chRune)}).Message, l.line, l.column)
			}
			raw.WriteByte(l.ch)
			l.readChar()
		case l.ch == '{':
			flushText()
			raw.WriteByte('{')
			exprLine, exprCol := l.line, l.column+1
			l.readChar()
			depth := 1
			start := l.position
			inStr := false
			for {
				if l.ch == 0 || l.ch == '\n' {
					return l.errorToken(rerrors.New("LEX-0006", nil).Message, line, col)
				}
				// Nested string literals may contain braces and quotes.
				if inStr {
					if l.ch == '\\' {
						l.readChar()
						if l.ch == 0 {
							return l.errorToken(rerrors.New("LEX-0006", nil).Message, line, col)
						}
					} else if l.ch == '"' {
						inStr = false
					}
					l.readChar()
					continue
				}
				if l.ch == '"' {
					inStr = true
					l.readChar()
					continue
				}
				if l.ch == '{' {
					depth++
				} else if l.ch == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				l.readChar()
			}
			src := l.input[start:l.position]
			raw.WriteString(src)
			raw.WriteByte('}')
			l.readChar() // consume closing '}'
			parts = append(parts, StringPart{Expr: src, IsExpr: true, Line: exprLine, Column: exprCol})
		default:
			if l.chSize == 1 {
				text.WriteByte(l.ch)
				raw.WriteByte(l.ch)
			} else {
				text.WriteRune(l.chRune)
				raw.WriteRune(l.chRune)
			}
			l.readChar()
		}
	}
}

// readUnicodeEscape reads the 4 hex digits of a \uXXXX escape. The lexer
// has already consumed the 'u'.
func (l *Lexer) readUnicodeEscape(raw *strings.Builder) (rune, bool) {
	l.readChar()
	var r rune
	for i := 0; i < 4; i++ {
		d := hexDigit(l.ch)
		if d < 0 {
			return 0, false
		}
		raw.WriteByte(l.ch)
		r = r*16 + rune(d)
		l.readChar()
	}
	return r, true
}

func hexDigit(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	}
	return -1
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
