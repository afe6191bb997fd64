package parser

import (
	"strings"
	"testing"

	"github.com/remaplang/remap/pkg/remap/ast"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %s", src, err)
	}
	return program
}

func parseError(t *testing.T, src string) string {
	t.Helper()
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("Parse(%q) expected an error", src)
	}
	return err.String()
}

func TestRenameStatement(t *testing.T) {
	program := parseProgram(t, "rename .name -> .username")
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.RenameStatement)
	if !ok {
		t.Fatalf("expected *ast.RenameStatement, got %T", program.Statements[0])
	}
	if stmt.From.String() != ".name" {
		t.Errorf("from = %q, want .name", stmt.From.String())
	}
	if stmt.To.String() != ".username" {
		t.Errorf("to = %q, want .username", stmt.To.String())
	}
}

func TestSelectAndDropPathLists(t *testing.T) {
	program := parseProgram(t, "select .a, .b.c, .d[0]\ndrop .x, .y")
	sel := program.Statements[0].(*ast.SelectStatement)
	if len(sel.Paths) != 3 {
		t.Fatalf("expected 3 select paths, got %d", len(sel.Paths))
	}
	if sel.Paths[1].String() != ".b.c" {
		t.Errorf("path 1 = %q", sel.Paths[1].String())
	}
	if sel.Paths[2].String() != ".d.[0]" {
		t.Errorf("path 2 = %q", sel.Paths[2].String())
	}
	drop := program.Statements[1].(*ast.DropStatement)
	if len(drop.Paths) != 2 {
		t.Fatalf("expected 2 drop paths, got %d", len(drop.Paths))
	}
}

func TestPathSegments(t *testing.T) {
	tests := []struct {
		src      string
		segments int
	}{
		{"drop .a", 1},
		{"drop .a.b.c", 3},
		{"drop .items[0].name", 3},
		{"drop .items.[0]", 2},
		{"drop .items[*].id", 3},
		{`drop .["key with spaces"]`, 1},
		{"drop .sort.each", 2}, // keywords as field names
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			program := parseProgram(t, tt.src)
			stmt := program.Statements[0].(*ast.DropStatement)
			if got := len(stmt.Paths[0].Segments); got != tt.segments {
				t.Errorf("expected %d segments, got %d (%s)", tt.segments, got, stmt.Paths[0].String())
			}
		})
	}
}

func TestNegativeIndexSegment(t *testing.T) {
	program := parseProgram(t, "drop .items[-1]")
	path := program.Statements[0].(*ast.DropStatement).Paths[0]
	idx, ok := path.Segments[1].(ast.IndexSegment)
	if !ok {
		t.Fatalf("expected IndexSegment, got %T", path.Segments[1])
	}
	if idx.Index != -1 {
		t.Errorf("index = %d, want -1", idx.Index)
	}
}

func TestSetStatementExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"set .a = 1 + 2 * 3", "(1 + (2 * 3))"},
		{"set .a = (1 + 2) * 3", "((1 + 2) * 3)"},
		{"set .a = .x > 1 and .y < 2", "((.x > 1) and (.y < 2))"},
		{"set .a = not .done", "(not .done)"},
		{"set .a = -.x + 1", "((-.x) + 1)"},
		{"set .a = .b == null or .c != 0", "((.b == null) or (.c != 0))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			program := parseProgram(t, tt.src)
			stmt := program.Statements[0].(*ast.SetStatement)
			if got := stmt.Value.String(); got != tt.want {
				t.Errorf("expression = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComparisonsDoNotChain(t *testing.T) {
	msg := parseError(t, "where .a == .b == .c")
	if !strings.Contains(msg, "unexpected") {
		t.Errorf("expected an unexpected-token error, got %q", msg)
	}
}

func TestBareIdentifierIsAPath(t *testing.T) {
	program := parseProgram(t, "where active")
	cond := program.Statements[0].(*ast.WhereStatement).Condition
	path, ok := cond.(*ast.Path)
	if !ok {
		t.Fatalf("bare identifier should parse as a path, got %T", cond)
	}
	field, ok := path.Segments[0].(ast.FieldSegment)
	if !ok || field.Name != "active" {
		t.Errorf("expected one field segment 'active', got %s", path.String())
	}
}

func TestCallExpression(t *testing.T) {
	program := parseProgram(t, `set .n = lower(concat(.a, "-", .b))`)
	stmt := program.Statements[0].(*ast.SetStatement)
	call, ok := stmt.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected call, got %T", stmt.Value)
	}
	if call.Function != "lower" || len(call.Arguments) != 1 {
		t.Errorf("unexpected call %s", call.String())
	}
	inner, ok := call.Arguments[0].(*ast.CallExpression)
	if !ok || inner.Function != "concat" || len(inner.Arguments) != 3 {
		t.Errorf("unexpected inner call %s", call.Arguments[0].String())
	}
}

func TestCastTypeAliases(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"cast .a as int", "int"},
		{"cast .a as integer", "int"},
		{"cast .a as float", "float"},
		{"cast .a as number", "float"},
		{"cast .a as str", "string"},
		{`cast .a as "string"`, "string"},
		{"cast .a as boolean", "bool"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			program := parseProgram(t, tt.src)
			stmt := program.Statements[0].(*ast.CastStatement)
			if stmt.TargetType != tt.want {
				t.Errorf("target = %q, want %q", stmt.TargetType, tt.want)
			}
		})
	}
}

func TestUnknownCastTypeSuggestion(t *testing.T) {
	msg := parseError(t, "cast .a as strng")
	if !strings.Contains(msg, "strng") {
		t.Errorf("error should name the bad type, got %q", msg)
	}
	if !strings.Contains(msg, "string") {
		t.Errorf("error should suggest 'string', got %q", msg)
	}
}

func TestUnknownStatementSuggestion(t *testing.T) {
	msg := parseError(t, "renmae .a -> .b")
	if !strings.Contains(msg, "renmae") {
		t.Errorf("error should name the bad keyword, got %q", msg)
	}
	if !strings.Contains(msg, "rename") {
		t.Errorf("error should suggest 'rename', got %q", msg)
	}
}

func TestFlattenStatement(t *testing.T) {
	program := parseProgram(t, "flatten .address")
	stmt := program.Statements[0].(*ast.FlattenStatement)
	if stmt.HasPrefix {
		t.Error("expected no prefix")
	}

	program = parseProgram(t, `flatten .address -> prefix "addr"`)
	stmt = program.Statements[0].(*ast.FlattenStatement)
	if !stmt.HasPrefix || stmt.Prefix != "addr" {
		t.Errorf("expected prefix addr, got %+v", stmt)
	}
}

func TestNestStatement(t *testing.T) {
	program := parseProgram(t, "nest .a_x, .a_y -> .a")
	stmt := program.Statements[0].(*ast.NestStatement)
	if len(stmt.Paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(stmt.Paths))
	}
	if stmt.Target.String() != ".a" {
		t.Errorf("target = %q", stmt.Target.String())
	}
}

func TestSortStatement(t *testing.T) {
	program := parseProgram(t, "sort .score desc, .name asc, .id")
	stmt := program.Statements[0].(*ast.SortStatement)
	if len(stmt.Keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(stmt.Keys))
	}
	if !stmt.Keys[0].Descending {
		t.Error("first key should be descending")
	}
	if stmt.Keys[1].Descending || stmt.Keys[2].Descending {
		t.Error("asc and default keys should not be descending")
	}
}

func TestEachBlock(t *testing.T) {
	src := `each .items {
	rename .name -> .title
	cast .price as float
}`
	program := parseProgram(t, src)
	stmt := program.Statements[0].(*ast.EachStatement)
	if stmt.Path.String() != ".items" {
		t.Errorf("path = %q", stmt.Path.String())
	}
	if len(stmt.Body.Statements) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(stmt.Body.Statements))
	}
}

func TestWhenBlock(t *testing.T) {
	src := `when .type == "user" {
	drop .internal
}`
	program := parseProgram(t, src)
	stmt := program.Statements[0].(*ast.WhenStatement)
	if len(stmt.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(stmt.Body.Statements))
	}
}

func TestNestedBlocks(t *testing.T) {
	src := `each .orders {
	each .lines {
		cast .qty as int
	}
}`
	program := parseProgram(t, src)
	outer := program.Statements[0].(*ast.EachStatement)
	inner, ok := outer.Body.Statements[0].(*ast.EachStatement)
	if !ok {
		t.Fatalf("expected nested each, got %T", outer.Body.Statements[0])
	}
	if len(inner.Body.Statements) != 1 {
		t.Errorf("inner body has %d statements", len(inner.Body.Statements))
	}
}

func TestNewlinesSeparateStatements(t *testing.T) {
	program := parseProgram(t, "\n\ndrop .a\n\n\ndrop .b\n")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}

	msg := parseError(t, "drop .a drop .b")
	if !strings.Contains(msg, "newline") {
		t.Errorf("expected a newline-separator error, got %q", msg)
	}
}

func TestInterpolatedStringParsing(t *testing.T) {
	program := parseProgram(t, `set .greeting = "hi {.name}!"`)
	stmt := program.Statements[0].(*ast.SetStatement)
	interp, ok := stmt.Value.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expected interpolated string, got %T", stmt.Value)
	}
	if len(interp.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(interp.Parts))
	}
	if interp.Parts[1].Expr == nil {
		t.Fatal("middle part should be an expression")
	}
	if _, ok := interp.Parts[1].Expr.(*ast.Path); !ok {
		t.Errorf("embedded expr should be a path, got %T", interp.Parts[1].Expr)
	}
}

func TestInterpolatedStringBadExpr(t *testing.T) {
	msg := parseError(t, `set .x = "oops {1 +}"`)
	if msg == "" {
		t.Fatal("expected an error for a bad embedded expression")
	}
}

func TestEmptyProgram(t *testing.T) {
	program := parseProgram(t, "\n\n# just a comment\n")
	if len(program.Statements) != 0 {
		t.Errorf("expected no statements, got %d", len(program.Statements))
	}
}

func TestDefaultStatement(t *testing.T) {
	program := parseProgram(t, `default .status = "active"`)
	stmt, ok := program.Statements[0].(*ast.DefaultStatement)
	if !ok {
		t.Fatalf("expected DefaultStatement, got %T", program.Statements[0])
	}
	if stmt.Path.String() != ".status" {
		t.Errorf("path = %q", stmt.Path.String())
	}
}
