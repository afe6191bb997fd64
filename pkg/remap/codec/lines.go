package codec

import (
	"bufio"
	"io"
	"strings"

	"github.com/remaplang/remap/pkg/remap/document"
)

// decodeLines reads each line as one string element.
func decodeLines(r io.Reader) (document.Value, error) {
	arr := &document.Array{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		arr.Elements = append(arr.Elements, &document.String{Value: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return arr, nil
}

func encodeLines(w io.Writer, v document.Value) error {
	arr, ok := v.(*document.Array)
	if !ok {
		_, err := io.WriteString(w, stringOrInspect(v)+"\n")
		return err
	}
	var out strings.Builder
	for _, elem := range arr.Elements {
		out.WriteString(stringOrInspect(elem))
		out.WriteString("\n")
	}
	_, err := io.WriteString(w, out.String())
	return err
}

// decodeText reads the whole input as one string value.
func decodeText(r io.Reader) (document.Value, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &document.String{Value: string(raw)}, nil
}

func encodeText(w io.Writer, v document.Value) error {
	_, err := io.WriteString(w, stringOrInspect(v))
	return err
}
