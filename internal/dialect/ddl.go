package dialect

import (
	"fmt"
	"strings"

	"github.com/reldb-io/reldb/internal/schema"
)

// CreateTableSQL renders the CREATE TABLE statement for a set of inferred
// columns. Primary key columns come first by construction (schema.FromRecord)
// and are declared through a table-level PRIMARY KEY clause, which on SQLite
// keeps a single INTEGER key aliased to rowid.
func CreateTableSQL(d Dialect, table string, columns []schema.Column) string {
	defs := make([]string, 0, len(columns)+1)
	var keys []string

	for _, col := range columns {
		typeName := d.TypeName(col.Kind)
		if col.Auto {
			typeName = d.AutoIncrementType()
		}
		defs = append(defs, fmt.Sprintf("%s %s", d.QuoteIdent(col.Name), typeName))
		if col.PrimaryKey {
			keys = append(keys, d.QuoteIdent(col.Name))
		}
	}
	if len(keys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", d.QuoteIdent(table), strings.Join(defs, ", "))
}

// InsertSQL builds a plain INSERT with :name bindvars, in the style
// database/sql drivers rebind through sqlx.
func InsertSQL(d Dialect, table string, columns []string) string {
	names := make([]string, 0, len(columns))
	binds := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, d.QuoteIdent(col))
		binds = append(binds, ":"+col)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(names, ", "), strings.Join(binds, ", "))
}

// onConflictUpsert builds INSERT ... ON CONFLICT (...) DO UPDATE for the
// dialects sharing that syntax (PostgreSQL, SQLite).
func onConflictUpsert(d Dialect, table string, columns, keyColumns []string) string {
	isKey := make(map[string]bool, len(keyColumns))
	keys := make([]string, 0, len(keyColumns))
	for _, k := range keyColumns {
		isKey[k] = true
		keys = append(keys, d.QuoteIdent(k))
	}

	names := make([]string, 0, len(columns))
	binds := make([]string, 0, len(columns))
	var updates []string
	for _, col := range columns {
		names = append(names, d.QuoteIdent(col))
		binds = append(binds, ":"+col)
		if !isKey[col] {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", d.QuoteIdent(col), d.QuoteIdent(col)))
		}
	}

	action := "DO NOTHING"
	if len(updates) > 0 {
		action = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		d.QuoteIdent(table),
		strings.Join(names, ", "),
		strings.Join(binds, ", "),
		strings.Join(keys, ", "),
		action)
}
