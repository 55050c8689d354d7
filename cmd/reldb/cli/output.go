package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/reldb-io/reldb/internal/db"
)

// rowEncoder writes result rows to the output stream. encode receives the
// result's column order alongside each row.
type rowEncoder interface {
	encode(columns []string, row db.Row) error
	flush() error
}

func newEncoder(format string, w io.Writer) (rowEncoder, error) {
	switch format {
	case "json", "":
		return &jsonEncoder{enc: json.NewEncoder(w)}, nil
	case "csv":
		return &csvEncoder{w: csv.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: json, csv)", format)
	}
}

// jsonEncoder emits one JSON object per line.
type jsonEncoder struct {
	enc *json.Encoder
}

func (e *jsonEncoder) encode(columns []string, row db.Row) error {
	return e.enc.Encode(row)
}

func (e *jsonEncoder) flush() error { return nil }

// csvEncoder emits a header from the first row's column order, then one
// record per row.
type csvEncoder struct {
	w       *csv.Writer
	columns []string
}

func (e *csvEncoder) encode(columns []string, row db.Row) error {
	if e.columns == nil {
		e.columns = columns
		if err := e.w.Write(columns); err != nil {
			return err
		}
	}
	record := make([]string, len(e.columns))
	for i, name := range e.columns {
		record[i] = formatValue(row[name])
	}
	return e.w.Write(record)
}

func (e *csvEncoder) flush() error {
	e.w.Flush()
	return e.w.Error()
}

func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case time.Time:
		return value.Format(time.RFC3339)
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
