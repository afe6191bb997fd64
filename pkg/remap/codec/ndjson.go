package codec

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/remaplang/remap/pkg/remap/document"
)

// NDJSONScanner reads one JSON value per call from a newline-delimited
// stream. The CLI uses it to apply a compiled program record by record
// without holding the whole stream in memory.
type NDJSONScanner struct {
	dec *json.Decoder
}

func NewNDJSONScanner(r io.Reader) *NDJSONScanner {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &NDJSONScanner{dec: dec}
}

// Next returns the next record, or io.EOF when the stream ends.
func (s *NDJSONScanner) Next() (document.Value, error) {
	return readJSONValue(s.dec)
}

// NDJSONWriter emits one compact JSON value per line. Null records are
// skipped: a filtered-out record simply produces no output line.
type NDJSONWriter struct {
	w *bufio.Writer
}

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{w: bufio.NewWriter(w)}
}

func (nw *NDJSONWriter) Write(v document.Value) error {
	if _, ok := v.(*document.Null); ok {
		return nil
	}
	if err := writeJSONValue(nw.w, v, "", 0); err != nil {
		return err
	}
	return nw.w.WriteByte('\n')
}

func (nw *NDJSONWriter) Flush() error {
	return nw.w.Flush()
}

// decodeNDJSON reads the whole stream into one array so a mapping can
// treat it as a single document (sort, where and friends over the full
// record set).
func decodeNDJSON(r io.Reader) (document.Value, error) {
	scanner := NewNDJSONScanner(r)
	arr := &document.Array{}
	for {
		v, err := scanner.Next()
		if err == io.EOF {
			return arr, nil
		}
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, v)
	}
}

func encodeNDJSON(w io.Writer, v document.Value) error {
	nw := NewNDJSONWriter(w)
	if arr, ok := v.(*document.Array); ok {
		for _, elem := range arr.Elements {
			if err := nw.Write(elem); err != nil {
				return err
			}
		}
		return nw.Flush()
	}
	if err := nw.Write(v); err != nil {
		return err
	}
	return nw.Flush()
}
