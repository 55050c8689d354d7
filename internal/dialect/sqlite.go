package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/reldb-io/reldb/internal/schema"
	"github.com/reldb-io/reldb/internal/source"
)

func init() {
	register(&SQLite{}, "sqlite3")
}

// SQLite implements Dialect for SQLite via modernc.org/sqlite. The source's
// database field is the file path; host, port and credentials are unused.
type SQLite struct{}

func (d *SQLite) Name() string   { return "sqlite" }
func (d *SQLite) Driver() string { return "sqlite" }

func (d *SQLite) DSN(src source.Source) (string, error) {
	if src.Database == "" {
		return "", fmt.Errorf("missing required connection parameters: [database]")
	}
	return src.Database, nil
}

// AdminDSN is unsupported: the driver creates the file on first open, so
// there is no database to create over a maintenance connection.
func (d *SQLite) AdminDSN(src source.Source) (string, error) {
	return "", fmt.Errorf("%w: sqlite databases are files", ErrUnsupported)
}

func (d *SQLite) DatabaseExistsQuery(name string) (string, []any) {
	return "", nil
}

func (d *SQLite) CreateDatabaseSQL(name string) string { return "" }

func (d *SQLite) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder is positionless on SQLite.
func (d *SQLite) Placeholder(int) string { return "?" }

func (d *SQLite) HasTableQuery(database, table string) (string, []any) {
	return fmt.Sprintf(`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = %s`,
		d.Placeholder(1)), []any{table}
}

func (d *SQLite) ListTablesQuery(database string) (string, []any) {
	// No information_schema; databaseName is ignored (one DB per file).
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
		nil
}

func (d *SQLite) ColumnsQuery(database, table string) (string, []any) {
	// PRAGMA table_info cannot use ? placeholders; embed the name safely.
	return fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(table, "'", "''")), nil
}

func (d *SQLite) ScanColumn(rows *sql.Rows) (ColumnInfo, error) {
	// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
	var cid int
	var name, colType string
	var notNull, pk int
	var dfltValue sql.NullString

	if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
		return ColumnInfo{}, err
	}
	return ColumnInfo{
		Name:       name,
		DataType:   colType,
		Nullable:   notNull == 0,
		Default:    dfltValue.String,
		PrimaryKey: pk > 0,
	}, nil
}

func (d *SQLite) TypeName(k schema.Kind) string {
	switch k {
	case schema.KindBool:
		return "BOOLEAN"
	case schema.KindInt:
		return "INTEGER"
	case schema.KindFloat:
		return "REAL"
	case schema.KindTime:
		return "TIMESTAMP"
	case schema.KindDate:
		return "DATE"
	case schema.KindBytes:
		return "BLOB"
	default:
		return "VARCHAR"
	}
}

// AutoIncrementType relies on INTEGER PRIMARY KEY aliasing rowid.
func (d *SQLite) AutoIncrementType() string { return "INTEGER" }

func (d *SQLite) Upsert(table string, columns, keyColumns []string) (string, error) {
	if len(keyColumns) == 0 {
		return "", fmt.Errorf("%w: sqlite upsert needs key columns", ErrUnsupported)
	}
	return onConflictUpsert(d, table, columns, keyColumns), nil
}

var sqliteForbiddenPatterns = []rule{
	patternRule(`(?i)\bload_extension\s*\(`, "load_extension()"),
	patternRule(`(?i)\bwritefile\s*\(`, "writefile()"),
	patternRule(`(?i)\bedit\s*\(`, "edit()"),
	patternRule(`(?i)\bfts3_tokenizer\s*\(`, "fts3_tokenizer()"),
}

var sqliteExtraKeywords = []rule{
	keywordRule("REPLACE"),
	keywordRule("ATTACH"),
	keywordRule("DETACH"),
	keywordRule("REINDEX"),
	keywordRule("VACUUM"),
}

var sqlitePragmaWrite = patternRule(`(?i)\bPRAGMA\s+\w+\s*=`, "PRAGMA write")

func (d *SQLite) ValidateReadOnly(sqlQuery string) error {
	// SQLite grammar: no # comments, no backslash escapes, backtick and
	// [bracket] identifiers for compatibility.
	cleaned := stripSQL(sqlQuery, stripOptions{backticks: true, brackets: true})

	if err := validateCommon(sqlQuery, cleaned); err != nil {
		return err
	}
	if err := checkRules(sqlQuery, sqliteForbiddenPatterns, "pattern"); err != nil {
		return err
	}
	if err := checkRules(cleaned, sqliteExtraKeywords, "keyword"); err != nil {
		return err
	}
	if sqlitePragmaWrite.re.MatchString(cleaned) {
		return fmt.Errorf("PRAGMA writes are not allowed")
	}
	return nil
}
