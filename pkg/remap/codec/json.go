package codec

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/remaplang/remap/pkg/remap/document"
)

// JSON support is hand-rolled over json.Decoder tokens rather than
// unmarshalling into map[string]any, because Go maps would destroy the
// key order the document model promises to preserve.

func decodeJSON(r io.Reader) (document.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (document.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return jsonTokenToValue(dec, tok)
}

func jsonTokenToValue(dec *json.Decoder, tok json.Token) (document.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readJSONObject(dec)
		case '[':
			return readJSONArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t.String())
	case string:
		return &document.String{Value: t}, nil
	case bool:
		return document.Bool(t), nil
	case json.Number:
		return jsonNumberToValue(t)
	case nil:
		return document.NULL, nil
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

func readJSONObject(dec *json.Decoder) (document.Value, error) {
	m := document.NewMap()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		v, err := readJSONValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
}

func readJSONArray(dec *json.Decoder) (document.Value, error) {
	arr := &document.Array{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		v, err := jsonTokenToValue(dec, tok)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, v)
	}
}

// jsonNumberToValue keeps an integer-looking literal an Int.
func jsonNumberToValue(n json.Number) (document.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return &document.Integer{Value: i}, nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &document.Float{Value: f}, nil
}

func encodeJSON(w io.Writer, v document.Value, compact bool) error {
	bw := bufio.NewWriter(w)
	indent := "  "
	if compact {
		indent = ""
	}
	if err := writeJSONValue(bw, v, indent, 0); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

func writeJSONValue(w *bufio.Writer, v document.Value, indent string, depth int) error {
	switch v := v.(type) {
	case *document.Null:
		_, err := w.WriteString("null")
		return err
	case *document.Boolean:
		_, err := w.WriteString(strconv.FormatBool(v.Value))
		return err
	case *document.Integer:
		_, err := w.WriteString(strconv.FormatInt(v.Value, 10))
		return err
	case *document.Float:
		_, err := w.WriteString(formatJSONFloat(v.Value))
		return err
	case *document.String:
		return writeJSONString(w, v.Value)
	case *document.Bytes:
		// Bytes have no JSON form of their own; emit as a string.
		return writeJSONString(w, string(v.Value))
	case *document.Array:
		return writeJSONArray(w, v, indent, depth)
	case *document.Map:
		return writeJSONMap(w, v, indent, depth)
	}
	return fmt.Errorf("cannot encode %s as JSON", v.Type())
}

func writeJSONString(w *bufio.Writer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(encoded)
	return err
}

// formatJSONFloat keeps whole floats recognizable as floats on re-read.
func formatJSONFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func writeJSONArray(w *bufio.Writer, arr *document.Array, indent string, depth int) error {
	if len(arr.Elements) == 0 {
		_, err := w.WriteString("[]")
		return err
	}
	if err := w.WriteByte('['); err != nil {
		return err
	}
	for i, elem := range arr.Elements {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := writeNewlineIndent(w, indent, depth+1); err != nil {
			return err
		}
		if err := writeJSONValue(w, elem, indent, depth+1); err != nil {
			return err
		}
	}
	if err := writeNewlineIndent(w, indent, depth); err != nil {
		return err
	}
	return w.WriteByte(']')
}

func writeJSONMap(w *bufio.Writer, m *document.Map, indent string, depth int) error {
	if m.Len() == 0 {
		_, err := w.WriteString("{}")
		return err
	}
	if err := w.WriteByte('{'); err != nil {
		return err
	}
	for i, key := range m.Keys() {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := writeNewlineIndent(w, indent, depth+1); err != nil {
			return err
		}
		if err := writeJSONString(w, key); err != nil {
			return err
		}
		if err := w.WriteByte(':'); err != nil {
			return err
		}
		if indent != "" {
			if err := w.WriteByte(' '); err != nil {
				return err
			}
		}
		v, _ := m.Get(key)
		if err := writeJSONValue(w, v, indent, depth+1); err != nil {
			return err
		}
	}
	if err := writeNewlineIndent(w, indent, depth); err != nil {
		return err
	}
	return w.WriteByte('}')
}

func writeNewlineIndent(w *bufio.Writer, indent string, depth int) error {
	if indent == "" {
		return nil
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	for i := 0; i < depth; i++ {
		if _, err := w.WriteString(indent); err != nil {
			return err
		}
	}
	return nil
}
