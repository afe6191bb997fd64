// Package codec converts between the universal document model and the
// concrete text formats the CLI reads and writes. Decoders build
// document values directly so that map key order survives a round trip.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/remaplang/remap/pkg/remap/document"
)

// Options carries per-invocation encoder settings.
type Options struct {
	Compact bool   // json: single-line output
	Table   string // sqlite: target table name
}

// Formats lists every format name Decode/Encode accept, for help text
// and validation.
var Formats = []string{"json", "ndjson", "yaml", "csv", "markdown", "lines", "text"}

// Decode reads one document in the named format.
func Decode(format string, r io.Reader) (document.Value, error) {
	switch format {
	case "json":
		return decodeJSON(r)
	case "ndjson":
		return decodeNDJSON(r)
	case "yaml", "yml":
		return decodeYAML(r)
	case "csv":
		return decodeCSV(r)
	case "markdown", "md":
		return decodeMarkdown(r)
	case "lines":
		return decodeLines(r)
	case "text":
		return decodeText(r)
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

// Encode writes one document in the named format.
func Encode(format string, w io.Writer, v document.Value, opts Options) error {
	switch format {
	case "json":
		return encodeJSON(w, v, opts.Compact)
	case "ndjson":
		return encodeNDJSON(w, v)
	case "yaml", "yml":
		return encodeYAML(w, v)
	case "csv":
		return encodeCSV(w, v)
	case "markdown", "md":
		return encodeMarkdown(w, v)
	case "lines":
		return encodeLines(w, v)
	case "text":
		return encodeText(w, v)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// DetectFormat guesses a format from a file name, ignoring a trailing
// .gz. Returns "" when the extension is not recognized.
func DetectFormat(path string) string {
	name := strings.TrimSuffix(path, ".gz")
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".ndjson", ".jsonl":
		return "ndjson"
	case ".yaml", ".yml":
		return "yaml"
	case ".csv":
		return "csv"
	case ".md", ".markdown":
		return "markdown"
	case ".txt":
		return "text"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	}
	return ""
}
