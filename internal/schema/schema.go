// Package schema infers column definitions from sample records so that
// missing tables can be created from the data about to be written.
package schema

import (
	"sort"
	"time"

	"github.com/golang-sql/civil"
)

// Kind is the dialect-independent column type inferred from a Go value.
// Dialects map kinds to concrete DDL type names.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindTime
	KindDate
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	case KindBytes:
		return "bytes"
	default:
		return "string"
	}
}

// Column is one inferred column of a table about to be created.
type Column struct {
	Name       string
	Kind       Kind
	PrimaryKey bool
	// Auto marks a synthesized integer key the database fills in itself.
	// Auto columns never appear in written records.
	Auto bool
}

// Infer maps a Go value to a column kind. Order matters: bool is checked
// before the numeric kinds, and time.Time before the generic fallback.
func Infer(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case time.Time, *time.Time:
		return KindTime
	case civil.Date, *civil.Date:
		return KindDate
	case []byte:
		return KindBytes
	default:
		return KindString
	}
}

// FromRecord builds the column list for a new table from a sample record.
// Columns named in primaryKeys become the primary key, typed from the
// record's values. With no primaryKeys an integer "id" column is
// synthesized, suffixed with underscores until it does not collide with a
// record field.
func FromRecord(record map[string]any, primaryKeys []string) []Column {
	isKey := make(map[string]bool, len(primaryKeys))
	for _, name := range primaryKeys {
		isKey[name] = true
	}

	var keyCols, otherCols []Column
	for name, value := range record {
		col := Column{Name: name, Kind: Infer(value)}
		if isKey[name] {
			col.PrimaryKey = true
			keyCols = append(keyCols, col)
		} else {
			otherCols = append(otherCols, col)
		}
	}

	if len(keyCols) == 0 {
		name := "id"
		for {
			if _, taken := record[name]; !taken {
				break
			}
			name += "_"
		}
		keyCols = []Column{{Name: name, Kind: KindInt, PrimaryKey: true, Auto: true}}
	}

	// Map iteration order is random; sort for deterministic DDL.
	sort.Slice(keyCols, func(i, j int) bool { return keyCols[i].Name < keyCols[j].Name })
	sort.Slice(otherCols, func(i, j int) bool { return otherCols[i].Name < otherCols[j].Name })

	return append(keyCols, otherCols...)
}
