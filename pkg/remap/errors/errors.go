// Package errors provides structured error types for the remap language.
//
// It defines Error, a unified type covering lexical, syntax, and evaluation
// failures, with source position, an error-code catalog, and fuzzy-match
// suggestions for typos.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassLex       ErrorClass = "lex"       // Lexical errors (bad token)
	ClassParse     ErrorClass = "parse"     // Syntax errors (bad grammar)
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Unknown function/name
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassCast      ErrorClass = "cast"      // Failed type coercion
)

// Error represents any error from lexing, parsing, or evaluation.
type Error struct {
	Class   ErrorClass `json:"class"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message"`
	Hints   []string   `json:"hints,omitempty"`
	Line    int        `json:"line"`   // 1-based (0 if unknown)
	Column  int        `json:"column"` // 1-based (0 if unknown)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.String()
}

// String renders the message followed by its source location, when known.
func (e *Error) String() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (line %d, column %d)", e.Line, e.Column))
	}
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *Error) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithPosition returns a copy of the error with line and column set.
func (e *Error) WithPosition(line, column int) *Error {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsEvalError reports whether the error arose during evaluation rather
// than lexing or parsing.
func (e *Error) IsEvalError() bool {
	return e.Class != ClassLex && e.Class != ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string // Message template with {{.placeholders}}
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Lexical errors
	"LEX-0001": {ClassLex, "unterminated string"},
	"LEX-0002": {ClassLex, "invalid escape sequence '\\{{.Escape}}'"},
	"LEX-0003": {ClassLex, "invalid unicode escape"},
	"LEX-0004": {ClassLex, "invalid number literal: {{.Literal}}"},
	"LEX-0005": {ClassLex, "unexpected character '{{.Char}}'"},
	"LEX-0006": {ClassLex, "unterminated interpolation in string"},

	// Syntax errors
	"PARSE-0001": {ClassParse, "expected {{.Expected}}, got '{{.Got}}'"},
	"PARSE-0002": {ClassParse, "unexpected token '{{.Token}}'"},
	"PARSE-0003": {ClassParse, "unknown statement '{{.Keyword}}'"},
	"PARSE-0004": {ClassParse, "unknown type '{{.Type}}' in cast"},
	"PARSE-0005": {ClassParse, "expected a path starting with '.'"},
	"PARSE-0006": {ClassParse, "statements must be separated by newlines"},
	"PARSE-0007": {ClassParse, "sort direction must be 'asc' or 'desc', got '{{.Got}}'"},

	// Type errors
	"TYPE-0001": {ClassType, "{{.Function}} expected {{.Expected}}, got {{.Got}}"},
	"TYPE-0002": {ClassType, "argument to `{{.Function}}` not supported, got {{.Got}}"},
	"TYPE-0003": {ClassType, "each requires an array at {{.Path}}, got {{.Got}}"},
	"TYPE-0004": {ClassType, "first argument to `{{.Function}}` must be {{.Expected}}, got {{.Got}}"},
	"TYPE-0005": {ClassType, "second argument to `{{.Function}}` must be {{.Expected}}, got {{.Got}}"},

	// Arity errors
	"ARITY-0001": {ClassArity, "wrong number of arguments to `{{.Function}}`. got={{.Got}}, want={{.Want}}"},
	"ARITY-0002": {ClassArity, "`{{.Function}}` expects {{.Min}}-{{.Max}} arguments, got {{.Got}}"},

	// Undefined errors
	"UNDEF-0001": {ClassUndefined, "unknown function: {{.Name}}"},

	// Operator errors
	"OP-0001": {ClassOperator, "unknown operator: {{.LeftType}} {{.Operator}} {{.RightType}}"},
	"OP-0002": {ClassOperator, "division by zero"},
	"OP-0003": {ClassOperator, "modulo by zero"},
	"OP-0004": {ClassOperator, "cannot negate {{.Type}}"},

	// Cast errors
	"CAST-0001": {ClassCast, "cannot cast {{.From}} to {{.To}}"},
	"CAST-0002": {ClassCast, "cannot parse {{.Value}} as {{.To}}"},
}

// New creates an Error from the catalog. An unknown code becomes a generic
// operator-class error carrying the code as its message.
func New(code string, data map[string]any) *Error {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &Error{Class: ClassOperator, Code: code, Message: msg}
	}
	return &Error{
		Class:   def.Class,
		Code:    code,
		Message: renderTemplate(def.Template, data),
	}
}

// NewWithPosition creates an Error with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *Error {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *Error {
	return &Error{Class: class, Message: message}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}
	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}
	return buf.String()
}

// ============================================================================
// Fuzzy matching - "did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// FindClosestMatch finds the closest match to input among candidates.
// Returns "" when nothing is within the distance threshold. The threshold
// scales with the input length and never exceeds 3 edits.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// Short words (1-3): max 1 edit. Medium (4-6): 2. Longer: 3.
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}
	return bestMatch
}

// FindTopMatches returns up to n closest matches within the threshold,
// nearest first. Used by the REPL's completion help.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}
	type match struct {
		value    string
		distance int
	}
	inputLower := strings.ToLower(input)
	var matches []match
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if dist > 0 {
			matches = append(matches, match{candidate, dist})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}
	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		if matches[i].distance <= threshold {
			result = append(result, matches[i].value)
		}
	}
	return result
}

// NewUnknownFunction creates an unknown-function error with a fuzzy hint.
func NewUnknownFunction(name string, available []string) *Error {
	err := New("UNDEF-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "did you mean `"+suggestion+"`?")
	}
	return err
}

// StatementKeywords is the fixed statement vocabulary used for typo
// suggestions on an unknown leading keyword.
var StatementKeywords = []string{
	"rename", "select", "drop", "set", "default", "cast",
	"flatten", "nest", "where", "sort", "each", "when",
}

// CastTypeNames is the fixed cast-type vocabulary (canonical and alias
// spellings) used for typo suggestions after `as`.
var CastTypeNames = []string{
	"int", "integer", "float", "number", "string", "str", "bool", "boolean",
}
