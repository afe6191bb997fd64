package lexer

import (
	"testing"
)

func tokenize(t *testing.T, input string) []Token {
	t.Helper()
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %s", input, err)
	}
	return tokens
}

func TestStatementTokens(t *testing.T) {
	input := `rename .name -> .username`
	tokens := tokenize(t, input)

	want := []struct {
		typ     TokenType
		literal string
	}{
		{RENAME, "rename"},
		{DOT, "."},
		{IDENT, "name"},
		{ARROW, "->"},
		{DOT, "."},
		{IDENT, "username"},
		{EOF, ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ {
			t.Errorf("token %d: expected type %s, got %s", i, w.typ, tokens[i].Type)
		}
		if tokens[i].Literal != w.literal {
			t.Errorf("token %d: expected literal %q, got %q", i, w.literal, tokens[i].Literal)
		}
	}
}

func TestOperatorsAndDelimiters(t *testing.T) {
	input := `= + * / % < > <= >= == != , ( ) [ ] { }`
	tokens := tokenize(t, input)

	want := []TokenType{
		ASSIGN, PLUS, ASTERISK, SLASH, PERCENT, LT, GT, LTE, GTE,
		EQ, NOT_EQ, COMMA, LPAREN, RPAREN, LBRACKET, RBRACKET,
		LBRACE, RBRACE, EOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d: expected %s, got %s (%q)", i, w, tokens[i].Type, tokens[i].Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `rename select drop set default cast as where sort each when not and or flatten nest asc desc true false null`
	tokens := tokenize(t, input)

	want := []TokenType{
		RENAME, SELECT, DROP, SET, DEFAULT, CAST, AS, WHERE, SORT, EACH,
		WHEN, NOT, AND, OR, FLATTEN, NEST, ASC, DESC, TRUE, FALSE, NULL, EOF,
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d: expected %s, got %s", i, w, tokens[i].Type)
		}
	}
}

func TestSpansAreOneBased(t *testing.T) {
	tokens := tokenize(t, "set .a = 1\nwhere .b")

	first := tokens[0]
	if first.Line != 1 || first.Column != 1 {
		t.Errorf("first token at (%d,%d), want (1,1)", first.Line, first.Column)
	}

	var whereTok *Token
	for i := range tokens {
		if tokens[i].Type == WHERE {
			whereTok = &tokens[i]
		}
	}
	if whereTok == nil {
		t.Fatal("no where token found")
	}
	if whereTok.Line != 2 || whereTok.Column != 1 {
		t.Errorf("where at (%d,%d), want (2,1)", whereTok.Line, whereTok.Column)
	}
}

func TestNewlineRunsCollapse(t *testing.T) {
	tokens := tokenize(t, "\n\nset .a = 1\n\n\nset .b = 2\n\n")

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	want := []TokenType{
		SET, DOT, IDENT, ASSIGN, INT,
		NEWLINE,
		SET, DOT, IDENT, ASSIGN, INT,
		NEWLINE,
		EOF,
	}
	if len(types) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(types), types)
	}
	for i, w := range want {
		if types[i] != w {
			t.Errorf("token %d: expected %s, got %s", i, w, types[i])
		}
	}
}

func TestComments(t *testing.T) {
	tokens := tokenize(t, "set .a = 1 # trailing comment\n# whole line\nset .b = 2")
	count := 0
	for _, tok := range tokens {
		if tok.Type == SET {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 set tokens, got %d", count)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
	}{
		{"42", INT, "42"},
		{"3.14", FLOAT, "3.14"},
		{"1e9", FLOAT, "1e9"},
		{"2.5e-3", FLOAT, "2.5e-3"},
		{"1_000_000", INT, "1000000"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			if tokens[0].Type != tt.typ {
				t.Errorf("expected %s, got %s", tt.typ, tokens[0].Type)
			}
			if tokens[0].Literal != tt.literal {
				t.Errorf("expected literal %q, got %q", tt.literal, tokens[0].Literal)
			}
		})
	}
}

func TestDotAfterNumberIsFieldAccess(t *testing.T) {
	// "1.foo" must not eat the dot as a decimal point
	tokens := tokenize(t, "1.foo")
	want := []TokenType{INT, DOT, IDENT, EOF}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Fatalf("token %d: expected %s, got %s", i, w, tokens[i].Type)
		}
	}
}

func TestTwoDecimalPointsIsError(t *testing.T) {
	_, err := Tokenize("3.14.15")
	if err == nil {
		t.Fatal("expected a lex error for a second decimal point")
	}
}

func TestMinusFolding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"binary after literal", "42 - 7", []TokenType{INT, MINUS, INT, EOF}},
		{"leading negative", "-7", []TokenType{INT, EOF}},
		{"negative after assign", "set .a = -7", []TokenType{SET, DOT, IDENT, ASSIGN, INT, EOF}},
		{"operator after identifier", "a -7", []TokenType{IDENT, MINUS, INT, EOF}},
		{"operator after rparen", "(1) -7", []TokenType{LPAREN, INT, RPAREN, MINUS, INT, EOF}},
		{"negative after lparen", "(-7)", []TokenType{LPAREN, INT, RPAREN, EOF}},
		{"arrow", "-> -7", []TokenType{ARROW, INT, EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			if len(tokens) != len(tt.want) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.want), len(tokens), tokens)
			}
			for i, w := range tt.want {
				if tokens[i].Type != w {
					t.Errorf("token %d: expected %s, got %s (%q)", i, w, tokens[i].Type, tokens[i].Literal)
				}
			}
		})
	}
}

func TestNegativeLiteralKeepsSign(t *testing.T) {
	tokens := tokenize(t, "set .a = -7")
	last := tokens[len(tokens)-2]
	if last.Type != INT || last.Literal != "-7" {
		t.Errorf("expected INT literal \"-7\", got %s %q", last.Type, last.Literal)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
		{`"brace \{ literal"`, "brace { literal"},
		{`"é"`, "é"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			if tokens[0].Type != STRING {
				t.Fatalf("expected STRING, got %s", tokens[0].Type)
			}
			if tokens[0].Literal != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tokens[0].Literal)
			}
		})
	}
}

func TestInterpolatedString(t *testing.T) {
	tokens := tokenize(t, `"hi {.name}, you are {.age + 1}!"`)
	tok := tokens[0]
	if tok.Type != INTERP_STRING {
		t.Fatalf("expected INTERP_STRING, got %s", tok.Type)
	}
	if len(tok.Parts) != 5 {
		t.Fatalf("expected 5 parts, got %d: %+v", len(tok.Parts), tok.Parts)
	}
	if tok.Parts[0].IsExpr || tok.Parts[0].Text != "hi " {
		t.Errorf("part 0: expected text \"hi \", got %+v", tok.Parts[0])
	}
	if !tok.Parts[1].IsExpr || tok.Parts[1].Expr != ".name" {
		t.Errorf("part 1: expected expr \".name\", got %+v", tok.Parts[1])
	}
	if tok.Parts[2].IsExpr || tok.Parts[2].Text != ", you are " {
		t.Errorf("part 2: expected text, got %+v", tok.Parts[2])
	}
	if !tok.Parts[3].IsExpr || tok.Parts[3].Expr != ".age + 1" {
		t.Errorf("part 3: expected expr \".age + 1\", got %+v", tok.Parts[3])
	}
	if tok.Parts[4].IsExpr || tok.Parts[4].Text != "!" {
		t.Errorf("part 4: expected text \"!\", got %+v", tok.Parts[4])
	}
}

func TestInterpolationBraceBalancing(t *testing.T) {
	tokens := tokenize(t, `"x: {if(.a > 1, "big", "small")}"`)
	tok := tokens[0]
	if tok.Type != INTERP_STRING {
		t.Fatalf("expected INTERP_STRING, got %s", tok.Type)
	}
	if len(tok.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(tok.Parts))
	}
	if tok.Parts[1].Expr != `if(.a > 1, "big", "small")` {
		t.Errorf("unexpected captured expr %q", tok.Parts[1].Expr)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `"never closed`},
		{"string broken by newline", "\"broken\nhere\""},
		{"invalid escape", `"\q"`},
		{"invalid unicode escape", `"\uZZZZ"`},
		{"unexpected char", "set .a = @"},
		{"unterminated interpolation", `"oops {.a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("expected a lex error for %q", tt.input)
			}
			if err.Line == 0 {
				t.Error("lex error missing line information")
			}
		})
	}
}
