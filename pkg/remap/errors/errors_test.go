package errors

import (
	"strings"
	"testing"
)

func TestCatalogRendering(t *testing.T) {
	tests := []struct {
		code string
		data map[string]any
		want string
	}{
		{"OP-0002", nil, "division by zero"},
		{"PARSE-0003", map[string]any{"Keyword": "renmae"}, "unknown statement 'renmae'"},
		{"CAST-0002", map[string]any{"Value": `"abc"`, "To": "int"}, `cannot parse "abc" as int`},
		{"TYPE-0003", map[string]any{"Path": ".items", "Got": "int"}, "each requires an array at .items, got int"},
		{"ARITY-0001", map[string]any{"Function": "lower", "Got": 2, "Want": 1}, "wrong number of arguments to `lower`. got=2, want=1"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Message != tt.want {
				t.Errorf("message = %q, want %q", err.Message, tt.want)
			}
		})
	}
}

func TestCatalogClasses(t *testing.T) {
	tests := []struct {
		code string
		want ErrorClass
	}{
		{"LEX-0001", ClassLex},
		{"PARSE-0002", ClassParse},
		{"TYPE-0001", ClassType},
		{"ARITY-0002", ClassArity},
		{"UNDEF-0001", ClassUndefined},
		{"OP-0001", ClassOperator},
		{"CAST-0001", ClassCast},
	}
	for _, tt := range tests {
		if got := New(tt.code, nil).Class; got != tt.want {
			t.Errorf("%s: class = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestStringIncludesPositionAndHints(t *testing.T) {
	err := NewWithPosition("OP-0002", 3, 14, nil)
	err.Hints = append(err.Hints, "hint one")
	s := err.String()
	if !strings.Contains(s, "(line 3, column 14)") {
		t.Errorf("missing position: %q", s)
	}
	if !strings.Contains(s, "hint one") {
		t.Errorf("missing hint: %q", s)
	}

	noPos := New("OP-0002", nil)
	if strings.Contains(noPos.String(), "line") {
		t.Errorf("zero position should not render: %q", noPos.String())
	}
}

func TestWithPositionCopies(t *testing.T) {
	base := New("OP-0002", nil)
	moved := base.WithPosition(2, 5)
	if base.Line != 0 || moved.Line != 2 || moved.Column != 5 {
		t.Errorf("base (%d,%d), moved (%d,%d)", base.Line, base.Column, moved.Line, moved.Column)
	}
}

func TestIsEvalError(t *testing.T) {
	if New("LEX-0001", nil).IsEvalError() {
		t.Error("lex errors are not eval errors")
	}
	if New("PARSE-0001", nil).IsEvalError() {
		t.Error("parse errors are not eval errors")
	}
	if !New("OP-0002", nil).IsEvalError() {
		t.Error("operator errors are eval errors")
	}
}

func TestFindClosestMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"renmae", "rename"},   // transposition, length 6, within 2 edits
		{"selct", "select"},    // deletion
		{"dorp", "drop"},       // transposition
		{"wheer", "where"},     // transposition
		{"flattne", "flatten"}, // length 7, within 3 edits
		{"rename", ""},         // exact match is not a suggestion
		{"zzzzzz", ""},         // nothing close
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, StatementKeywords); got != tt.want {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindClosestMatchShortWordThreshold(t *testing.T) {
	// A 3-letter input allows only one edit.
	if got := FindClosestMatch("st", []string{"set"}); got != "set" {
		t.Errorf("got %q, want set", got)
	}
	if got := FindClosestMatch("xy", []string{"set"}); got != "" {
		t.Errorf("got %q, want no match", got)
	}
}

func TestFindTopMatches(t *testing.T) {
	got := FindTopMatches("slect", []string{"select", "set", "sort"}, 2)
	if len(got) == 0 || got[0] != "select" {
		t.Errorf("got %v, want select first", got)
	}
}

func TestUnknownCodeFallsBack(t *testing.T) {
	err := New("NOPE-9999", nil)
	if err.Message != "NOPE-9999" {
		t.Errorf("message = %q", err.Message)
	}
	if err.Class != ClassOperator {
		t.Errorf("class = %s", err.Class)
	}
}

func TestToJSON(t *testing.T) {
	err := NewWithPosition("OP-0002", 1, 2, nil)
	b, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatal(jerr)
	}
	s := string(b)
	for _, want := range []string{`"class":"operator"`, `"code":"OP-0002"`, `"line":1`, `"column":2`} {
		if !strings.Contains(s, want) {
			t.Errorf("json %s missing %s", s, want)
		}
	}
}
