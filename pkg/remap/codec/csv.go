package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/remaplang/remap/pkg/remap/document"
)

// decodeCSV reads a header row followed by records, producing an array
// of maps keyed by the header. Cell values are inferred: int, float,
// bool and empty-cell-as-null, falling back to string.
func decodeCSV(r io.Reader) (document.Value, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &document.Array{}, nil
	}
	if err != nil {
		return nil, err
	}

	arr := &document.Array{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return arr, nil
		}
		if err != nil {
			return nil, err
		}
		row := document.NewMap()
		for i, key := range header {
			if i < len(record) {
				row.Set(key, inferCSVCell(record[i]))
			} else {
				row.Set(key, document.NULL)
			}
		}
		arr.Elements = append(arr.Elements, row)
	}
}

func inferCSVCell(cell string) document.Value {
	if cell == "" {
		return document.NULL
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return &document.Integer{Value: n}
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return &document.Float{Value: f}
	}
	switch strings.ToLower(cell) {
	case "true":
		return document.TRUE
	case "false":
		return document.FALSE
	}
	return &document.String{Value: cell}
}

// encodeCSV writes an array of maps with a header built from the first
// row's key order, extended by any keys later rows introduce. An array
// of arrays writes raw rows without a header.
func encodeCSV(w io.Writer, v document.Value) error {
	arr, ok := v.(*document.Array)
	if !ok {
		return fmt.Errorf("csv output requires an array, got %s", strings.ToLower(string(v.Type())))
	}
	if len(arr.Elements) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if _, ok := arr.Elements[0].(*document.Map); ok {
		header := csvHeader(arr)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, elem := range arr.Elements {
			row, ok := elem.(*document.Map)
			if !ok {
				return fmt.Errorf("csv rows must all be maps, got %s", strings.ToLower(string(elem.Type())))
			}
			record := make([]string, len(header))
			for i, key := range header {
				if cell, ok := row.Get(key); ok {
					record[i] = csvCell(cell)
				}
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	} else {
		for _, elem := range arr.Elements {
			rowArr, ok := elem.(*document.Array)
			if !ok {
				if err := cw.Write([]string{csvCell(elem)}); err != nil {
					return err
				}
				continue
			}
			record := make([]string, len(rowArr.Elements))
			for i, cell := range rowArr.Elements {
				record[i] = csvCell(cell)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// csvHeader unions the key order of every row, first appearance wins.
func csvHeader(arr *document.Array) []string {
	var header []string
	seen := map[string]bool{}
	for _, elem := range arr.Elements {
		row, ok := elem.(*document.Map)
		if !ok {
			continue
		}
		for _, key := range row.Keys() {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}
	return header
}

func csvCell(v document.Value) string {
	switch v := v.(type) {
	case *document.Null:
		return ""
	case *document.String:
		return v.Value
	default:
		return v.Inspect()
	}
}
