package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/remaplang/remap/pkg/remap/ast"
	"github.com/remaplang/remap/pkg/remap/codec"
	"github.com/remaplang/remap/pkg/remap/document"
	"github.com/remaplang/remap/pkg/remap/errors"
	"github.com/remaplang/remap/pkg/remap/evaluator"
	"github.com/remaplang/remap/pkg/remap/parser"
	"github.com/remaplang/remap/pkg/remap/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.3.1"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")
	verboseFlag     = flag.Bool("v", false, "Verbose progress on stderr")

	// Program flags
	evalFlag     = flag.String("e", "", "Evaluate mapping source string")
	evalLongFlag = flag.String("eval", "", "Evaluate mapping source string")
	checkFlag    = flag.Bool("check", false, "Check mapping syntax without executing")

	// I/O flags
	inFlag         = flag.String("i", "", "Input file (default stdin)")
	inLongFlag     = flag.String("in", "", "Input file (default stdin)")
	outFlag        = flag.String("o", "", "Output file (default stdout)")
	outLongFlag    = flag.String("out", "", "Output file (default stdout)")
	fromFlag       = flag.String("f", "", "Input format (json, ndjson, yaml, csv, markdown, lines, text)")
	fromLongFlag   = flag.String("from", "", "Input format (json, ndjson, yaml, csv, markdown, lines, text)")
	toFlag         = flag.String("t", "", "Output format (json, ndjson, yaml, csv, markdown, lines, text, sqlite)")
	toLongFlag     = flag.String("to", "", "Output format (json, ndjson, yaml, csv, markdown, lines, text, sqlite)")
	charsetFlag    = flag.String("charset", "", "Input charset (default utf-8)")
	outCharsetFlag = flag.String("out-charset", "", "Output charset (default utf-8)")
	tableFlag      = flag.String("table", "", "Table name for sqlite output (default records)")
	compactFlag    = flag.Bool("compact", false, "Compact single-line JSON output")
	watchFlag      = flag.Bool("w", false, "Watch mapping and input files, re-run on change")
	watchLongFlag  = flag.Bool("watch", false, "Watch mapping and input files, re-run on change")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("remap version %s\n", Version)
		os.Exit(0)
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case *checkFlag:
		files := flag.Args()
		if evalCode == "" && len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires a mapping file or -e")
			os.Exit(2)
		}
		if evalCode != "" {
			os.Exit(checkSource("<eval>", evalCode))
		}
		os.Exit(checkFiles(files))
	case evalCode != "" || len(flag.Args()) > 0 || hasIOFlags():
		opts, err := buildRunOptions(evalCode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if *watchFlag || *watchLongFlag {
			watchAndRun(opts)
			return
		}
		if err := runOnce(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		repl.Start(os.Stdin, os.Stdout, Version)
	}
}

// hasIOFlags reports whether any I/O flag was given. With no mapping at
// all those still mean something: an empty program is the identity, so
// remap acts as a pure format/charset converter.
func hasIOFlags() bool {
	for _, v := range []string{
		*inFlag, *inLongFlag, *outFlag, *outLongFlag,
		*fromFlag, *fromLongFlag, *toFlag, *toLongFlag,
		*charsetFlag, *outCharsetFlag,
	} {
		if v != "" {
			return true
		}
	}
	return false
}

func printHelp() {
	fmt.Printf(`remap - document transformation tool version %s

Usage:
  remap [options] <mapping.remap>
  remap [options] -e "statements"
  remap --check <mapping.remap>
  remap -i <in> -o <out>            Convert formats, no mapping
  remap                             Start interactive REPL

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -v                    Verbose progress on stderr

Program Options:
  -e, --eval <code>     Use inline mapping source instead of a file
  --check               Check mapping syntax without executing

I/O Options:
  -i, --in <file>       Input file (default stdin)
  -o, --out <file>      Output file (default stdout)
  -f, --from <format>   Input format: json, ndjson, yaml, csv, markdown, lines, text
  -t, --to <format>     Output format: the above plus sqlite
  --charset <name>      Input charset (e.g. latin1, windows-1252; default utf-8)
  --out-charset <name>  Output charset (default utf-8)
  --table <name>        Table name for sqlite output (default records)
  --compact             Compact single-line JSON output
  -w, --watch           Re-run when the mapping or input file changes

Formats default to json; with -i or -o the format is detected from the
file extension (a trailing .gz adds gzip compression either way).
With ndjson on both sides the mapping is applied per record, streaming.

Examples:
  remap users.remap -i users.json               Transform a JSON file
  cat users.json | remap users.remap            Same, via stdin
  remap -e 'rename .name -> .username'          Inline one-liner
  remap users.remap -i in.csv -o out.ndjson     CSV in, NDJSON out
  remap users.remap -i logs.ndjson.gz -o out.ndjson   Gzip in, stream out
  remap users.remap -i in.json -t sqlite -o out.db --table users
  remap --check users.remap                     Syntax check only
  remap -w users.remap -i users.json -o out.json      Re-run on change
`, Version)
}

// runOptions is everything one transformation run needs, resolved from
// the flags once so watch mode can re-run cheaply.
type runOptions struct {
	programName string // file name or "<eval>"
	programFile string // empty for -e
	inlineSrc   string // set for -e
	inPath      string // empty for stdin
	outPath     string // empty for stdout
	inFormat    string
	outFormat   string
	inCharset   string
	outCharset  string
	table       string
	compact     bool
	verbose     bool
}

func buildRunOptions(evalCode string) (*runOptions, error) {
	opts := &runOptions{
		inlineSrc:  evalCode,
		inCharset:  *charsetFlag,
		outCharset: *outCharsetFlag,
		table:      *tableFlag,
		compact:    *compactFlag,
		verbose:    *verboseFlag,
	}
	switch {
	case evalCode != "":
		opts.programName = "<eval>"
	case len(flag.Args()) > 0:
		opts.programFile = flag.Args()[0]
		opts.programName = opts.programFile
	default:
		// No mapping at all: the empty program, a pure format converter.
		opts.programName = "<identity>"
	}

	opts.inPath = *inFlag
	if opts.inPath == "" {
		opts.inPath = *inLongFlag
	}
	opts.outPath = *outFlag
	if opts.outPath == "" {
		opts.outPath = *outLongFlag
	}

	opts.inFormat = firstNonEmpty(*fromFlag, *fromLongFlag, codec.DetectFormat(opts.inPath), "json")
	opts.outFormat = firstNonEmpty(*toFlag, *toLongFlag, codec.DetectFormat(opts.outPath), "json")

	if opts.inFormat == "sqlite" {
		return nil, fmt.Errorf("sqlite is an output format only")
	}
	if opts.outFormat == "sqlite" && opts.outPath == "" {
		return nil, fmt.Errorf("sqlite output requires -o with a database file path")
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func runOnce(opts *runOptions) error {
	program, src, err := loadProgram(opts)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(opts)
	if err != nil {
		return err
	}
	defer closeIn()

	// NDJSON on both sides streams record by record with one compiled
	// program, instead of materializing the whole stream.
	if opts.inFormat == "ndjson" && opts.outFormat == "ndjson" {
		return runStreaming(opts, program, src, in)
	}

	doc, err := codec.Decode(opts.inFormat, in)
	if err != nil {
		return fmt.Errorf("decoding %s input: %w", opts.inFormat, err)
	}

	result, eerr := evaluator.Run(program, doc)
	if eerr != nil {
		printEvalError(opts.programName, src, eerr)
		os.Exit(1)
	}

	return writeOutput(opts, result)
}

func loadProgram(opts *runOptions) (*ast.Program, string, error) {
	src := opts.inlineSrc
	if opts.programFile != "" {
		content, err := os.ReadFile(opts.programFile)
		if err != nil {
			return nil, "", fmt.Errorf("reading mapping file: %w", err)
		}
		src = string(content)
	}
	program, perr := parser.Parse(src)
	if perr != nil {
		printStructuredError(opts.programName, src, perr)
		os.Exit(1)
	}
	return program, src, nil
}

func openInput(opts *runOptions) (io.Reader, func(), error) {
	var in io.Reader = os.Stdin
	closers := []func(){}
	if opts.inPath != "" {
		f, err := os.Open(opts.inPath)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { f.Close() })
		in = f
		if codec.IsGzipPath(opts.inPath) {
			gz, err := codec.GzipReader(f)
			if err != nil {
				f.Close()
				return nil, nil, err
			}
			closers = append(closers, func() { gz.Close() })
			in = gz
		}
	}
	if opts.inCharset != "" {
		wrapped, err := codec.CharsetReader(in, opts.inCharset)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		in = wrapped
	}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return in, closeAll, nil
}

func writeOutput(opts *runOptions, result document.Value) error {
	if opts.outFormat == "sqlite" {
		return codec.WriteSQLite(opts.outPath, opts.table, result)
	}

	var out io.Writer = os.Stdout
	var closers []func() error
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return err
		}
		closers = append(closers, f.Close)
		out = f
		if codec.IsGzipPath(opts.outPath) {
			gz := codec.GzipWriter(f)
			closers = append(closers, gz.Close)
			out = gz
		}
	}
	if opts.outCharset != "" {
		wrapped, err := codec.CharsetWriter(out, opts.outCharset)
		if err != nil {
			return err
		}
		out = wrapped
	}

	if err := codec.Encode(opts.outFormat, out, result, codec.Options{Compact: opts.compact, Table: opts.table}); err != nil {
		return err
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			return err
		}
	}
	return nil
}

// runStreaming applies the compiled program to each NDJSON record as it
// arrives. Records the program turns into null (a failed where, say)
// produce no output line.
func runStreaming(opts *runOptions, program *ast.Program, src string, in io.Reader) error {
	var out io.Writer = os.Stdout
	var closers []func() error
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return err
		}
		closers = append(closers, f.Close)
		out = f
		if codec.IsGzipPath(opts.outPath) {
			gz := codec.GzipWriter(f)
			closers = append(closers, gz.Close)
			out = gz
		}
	}

	scanner := codec.NewNDJSONScanner(in)
	writer := codec.NewNDJSONWriter(out)
	records := 0
	for {
		record, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decoding ndjson record %d: %w", records+1, err)
		}
		records++

		result, eerr := evaluator.Run(program, record)
		if eerr != nil {
			printEvalError(opts.programName, src, eerr)
			os.Exit(1)
		}
		if err := writer.Write(result); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			return err
		}
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "remap: %d records\n", records)
	}
	return nil
}

// watchAndRun re-runs the transformation whenever the mapping file or
// the input file changes. Requires file (not stdin) input.
func watchAndRun(opts *runOptions) {
	if opts.inPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --watch requires -i (stdin cannot be re-read)")
		os.Exit(2)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	for _, path := range []string{opts.programFile, opts.inPath} {
		if path == "" {
			continue
		}
		if err := watcher.Add(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	run := func() {
		if opts.verbose {
			fmt.Fprintln(os.Stderr, "remap: running")
		}
		if err := runOnce(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	run()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors often replace files; re-add so renames keep working.
			watcher.Add(event.Name)
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

// checkFiles checks mapping syntax without executing.
func checkFiles(files []string) int {
	code := 0
	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return 2
		}
		if c := checkSource(filename, string(content)); c != 0 {
			code = c
		}
	}
	return code
}

func checkSource(name, src string) int {
	if _, err := parser.Parse(src); err != nil {
		printStructuredError(name, src, err)
		return 1
	}
	return 0
}

// printStructuredError prints a lex/parse error with source context.
func printStructuredError(filename, source string, err *errors.Error) {
	fmt.Fprintf(os.Stderr, "%s error in %s", err.Class, filename)
	if err.Line > 0 {
		fmt.Fprintf(os.Stderr, ": line %d, column %d", err.Line, err.Column)
	}
	fmt.Fprintf(os.Stderr, "\n  %s\n", err.Message)
	for _, hint := range err.Hints {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}
	printSourceContext(strings.Split(source, "\n"), err.Line, err.Column)
}

// printEvalError prints a runtime error with source context.
func printEvalError(filename, source string, err *errors.Error) {
	fmt.Fprint(os.Stderr, "Evaluation error")
	if err.Line > 0 {
		fmt.Fprintf(os.Stderr, " in %s: line %d, column %d\n", filename, err.Line, err.Column)
	} else {
		fmt.Fprintf(os.Stderr, " in %s\n", filename)
	}
	fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	for _, hint := range err.Hints {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}
	printSourceContext(strings.Split(source, "\n"), err.Line, err.Column)
}

// printSourceContext prints the offending source line and a pointer.
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}
	sourceLine := lines[lineNum-1]

	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' {
			trimCount++
		} else if sourceLine[i] == '\t' {
			trimCount += 8
		} else {
			break
		}
	}
	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	if colNum > 0 {
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}
		adjusted := visualCol - trimCount
		if adjusted < 0 {
			adjusted = 0
		}
		fmt.Fprintf(os.Stderr, "    %s^\n", strings.Repeat(" ", adjusted))
	}
}
