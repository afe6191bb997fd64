package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/remaplang/remap/pkg/remap/codec"
	"github.com/remaplang/remap/pkg/remap/document"
	"github.com/remaplang/remap/pkg/remap/errors"
	"github.com/remaplang/remap/pkg/remap/evaluator"
	"github.com/remaplang/remap/pkg/remap/parser"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

const REMAP_LOGO = `
█▀█ █▀▀ █▀▄▀█ ▄▀█ █▀█
█▀▄ ██▄ █░▀░█ █▀█ █▀▀ `

// Statement keywords and builtins for tab completion
var completionWords = []string{
	// Statements
	"rename", "select", "drop", "set", "default", "cast", "as",
	"flatten", "nest", "where", "sort", "each", "when", "asc", "desc",
	// Operators
	"and", "or", "not",
	// Builtins - strings
	"lower", "upper", "trim", "trim_start", "trim_end", "len", "replace",
	"contains", "starts_with", "ends_with", "substr", "concat", "split",
	"join", "reverse",
	// Builtins - types and math
	"to_int", "to_float", "to_string", "to_bool", "type_of",
	"abs", "min", "max", "floor", "ceil", "round",
	// Builtins - null and collections
	"is_null", "is_array", "coalesce", "default", "keys", "values",
	"unique", "first", "last", "sum", "group_by", "if",
	"parse_date",
	// Common values
	"true", "false", "null",
}

// Start runs the interactive session. Each entered statement transforms
// the session's current document in place, so a mapping can be built up
// and inspected step by step.
func Start(in io.Reader, out io.Writer, version string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	historyFile := filepath.Join(os.TempDir(), ".remap_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "%s", REMAP_LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Statements transform the current document (starts as an empty map)")
	fmt.Fprintln(out, "Type ':quit' or Ctrl+D to quit, ':help' for commands")
	fmt.Fprintln(out, "")

	var doc document.Value = document.NewMap()
	var inputBuffer strings.Builder

	for {
		currentPrompt := PROMPT
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)

		// Handle REPL commands (start with :)
		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			line.AppendHistory(trimmed)
			if next, quit := handleReplCommand(trimmed, doc, out); quit {
				fmt.Fprintln(out, "Goodbye!")
				return
			} else if next != nil {
				doc = next
			}
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		// each/when blocks span lines until braces balance
		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}
		inputBuffer.Reset()

		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		program, perr := parser.Parse(fullInput)
		if perr != nil {
			printError(out, perr)
			continue
		}

		result, eerr := evaluator.Run(program, doc)
		if eerr != nil {
			printError(out, eerr)
			continue
		}
		doc = result
		printDocument(out, doc)
	}
}

// handleReplCommand handles meta-commands. It returns a replacement
// document (nil to keep the current one) and whether to quit.
func handleReplCommand(cmd string, doc document.Value, out io.Writer) (document.Value, bool) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help, :h, :?    Show this help")
		fmt.Fprintln(out, "  :load FILE       Load a document (format from extension)")
		fmt.Fprintln(out, "  :doc             Print the current document")
		fmt.Fprintln(out, "  :reset           Reset the document to an empty map")
		fmt.Fprintln(out, "  :quit, :q        Exit")
		return nil, false

	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: :load FILE")
			return nil, false
		}
		loaded, err := loadDocument(fields[1])
		if err != nil {
			fmt.Fprintf(out, "load error: %v\n", err)
			return nil, false
		}
		printDocument(out, loaded)
		return loaded, false

	case ":doc":
		printDocument(out, doc)
		return nil, false

	case ":reset":
		fmt.Fprintln(out, "Document reset")
		return document.NewMap(), false

	case ":quit", ":q":
		return nil, true

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
		return nil, false
	}
}

func loadDocument(path string) (document.Value, error) {
	format := codec.DetectFormat(path)
	if format == "" || format == "sqlite" {
		return nil, fmt.Errorf("cannot detect a readable format for %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if codec.IsGzipPath(path) {
		gz, err := codec.GzipReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return codec.Decode(format, r)
}

func printDocument(out io.Writer, doc document.Value) {
	if err := codec.Encode("json", out, doc, codec.Options{}); err != nil {
		fmt.Fprintf(out, "%s\n", doc.Inspect())
	}
}

func printError(out io.Writer, err *errors.Error) {
	fmt.Fprintf(out, "%s error", err.Class)
	if err.Line > 0 {
		fmt.Fprintf(out, ": line %d, column %d\n  %s\n", err.Line, err.Column, err.Message)
	} else {
		fmt.Fprintf(out, "\n  %s\n", err.Message)
	}
	for _, hint := range err.Hints {
		fmt.Fprintf(out, "  hint: %s\n", hint)
	}
}

// filterCompletions returns completion suggestions for the word being
// typed.
func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}
	words := strings.Fields(line)
	lastWord := words[len(words)-1]

	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, word)
		}
	}
	return matches
}

// needsMoreInput reports unclosed braces or brackets outside strings.
func needsMoreInput(input string) bool {
	braceCount := 0
	bracketCount := 0
	parenCount := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		case '(':
			parenCount++
		case ')':
			parenCount--
		case '#':
			// Comment runs to end of line
			for i < len(input) && input[i] != '\n' {
				i++
			}
		}
	}

	return braceCount > 0 || bracketCount > 0 || parenCount > 0
}
