package codec

import (
	"bufio"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/remaplang/remap/pkg/remap/document"
)

// WriteSQLite stores an array of maps as rows of a table in a SQLite
// database file, creating the table if needed. Column types come from
// the first non-null value seen per column; everything unrecognized is
// stored as TEXT. This is an output sink only - there is no SQLite
// decoder.
func WriteSQLite(path, table string, v document.Value) error {
	arr, ok := v.(*document.Array)
	if !ok {
		return fmt.Errorf("sqlite output requires an array, got %s", strings.ToLower(string(v.Type())))
	}
	if table == "" {
		table = "records"
	}
	if err := validIdentifier(table); err != nil {
		return err
	}

	columns := csvHeader(arr)
	if len(columns) == 0 {
		return fmt.Errorf("sqlite output requires map rows with at least one key")
	}
	for _, col := range columns {
		if err := validIdentifier(col); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%q %s", col, sqliteColumnType(arr, col))
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(defs, ", "))
	if _, err := db.Exec(create); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = fmt.Sprintf("%q", col)
		marks[i] = "?"
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, elem := range arr.Elements {
		row, ok := elem.(*document.Map)
		if !ok {
			return fmt.Errorf("sqlite rows must all be maps, got %s", strings.ToLower(string(elem.Type())))
		}
		args := make([]any, len(columns))
		for i, col := range columns {
			cell, _ := row.Get(col)
			args[i] = sqliteArg(cell)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// validIdentifier rejects names that would break out of the quoted
// identifier in generated SQL.
func validIdentifier(name string) error {
	if name == "" || strings.ContainsAny(name, "\"\x00") {
		return fmt.Errorf("invalid sqlite identifier %q", name)
	}
	return nil
}

func sqliteColumnType(arr *document.Array, col string) string {
	for _, elem := range arr.Elements {
		row, ok := elem.(*document.Map)
		if !ok {
			continue
		}
		cell, ok := row.Get(col)
		if !ok {
			continue
		}
		switch cell.(type) {
		case *document.Null:
			continue
		case *document.Integer, *document.Boolean:
			return "INTEGER"
		case *document.Float:
			return "REAL"
		case *document.Bytes:
			return "BLOB"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func sqliteArg(v document.Value) any {
	switch v := v.(type) {
	case nil, *document.Null:
		return nil
	case *document.Boolean:
		if v.Value {
			return int64(1)
		}
		return int64(0)
	case *document.Integer:
		return v.Value
	case *document.Float:
		return v.Value
	case *document.String:
		return v.Value
	case *document.Bytes:
		return v.Value
	default:
		// Nested containers are stored as their JSON text.
		var out strings.Builder
		bw := bufio.NewWriter(&out)
		if err := writeJSONValue(bw, v, "", 0); err != nil {
			return v.Inspect()
		}
		bw.Flush()
		return out.String()
	}
}
