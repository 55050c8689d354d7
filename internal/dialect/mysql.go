package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/reldb-io/reldb/internal/schema"
	"github.com/reldb-io/reldb/internal/source"
)

func init() {
	register(&MySQL{}, "mariadb")
}

// MySQL implements Dialect for MySQL and MariaDB via
// github.com/go-sql-driver/mysql.
type MySQL struct{}

func (d *MySQL) Name() string   { return "mysql" }
func (d *MySQL) Driver() string { return "mysql" }

func (d *MySQL) DSN(src source.Source) (string, error) {
	return d.dsn(src, src.Database)
}

// AdminDSN connects without a default database so CREATE DATABASE can run.
func (d *MySQL) AdminDSN(src source.Source) (string, error) {
	return d.dsn(src, "")
}

func (d *MySQL) dsn(src source.Source, database string) (string, error) {
	missing := missingFields(src, "host", "port", "database", "username")
	if len(missing) > 0 {
		return "", fmt.Errorf("missing required connection parameters: %v", missing)
	}
	// parseTime makes DATETIME columns scan as time.Time.
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		src.Username, src.Password, src.Host, src.Port, database), nil
}

func (d *MySQL) DatabaseExistsQuery(name string) (string, []any) {
	return fmt.Sprintf(`SELECT 1 FROM information_schema.schemata WHERE schema_name = %s`, d.Placeholder(1)), []any{name}
}

func (d *MySQL) CreateDatabaseSQL(name string) string {
	return "CREATE DATABASE IF NOT EXISTS " + d.QuoteIdent(name)
}

func (d *MySQL) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Placeholder is positionless on MySQL.
func (d *MySQL) Placeholder(int) string { return "?" }

func (d *MySQL) HasTableQuery(database, table string) (string, []any) {
	return fmt.Sprintf(`SELECT 1 FROM information_schema.tables WHERE table_schema = %s AND table_name = %s`,
			d.Placeholder(1), d.Placeholder(2)),
		[]any{database, table}
}

func (d *MySQL) ListTablesQuery(database string) (string, []any) {
	return fmt.Sprintf(`SELECT table_name FROM information_schema.tables WHERE table_schema = %s ORDER BY table_name`,
			d.Placeholder(1)),
		[]any{database}
}

func (d *MySQL) ColumnsQuery(database, table string) (string, []any) {
	return fmt.Sprintf(`SELECT column_name, data_type, is_nullable, column_key, column_default
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position`, d.Placeholder(1), d.Placeholder(2)), []any{database, table}
}

func (d *MySQL) ScanColumn(rows *sql.Rows) (ColumnInfo, error) {
	var name, dataType, isNullable, colKey string
	var colDefault sql.NullString

	if err := rows.Scan(&name, &dataType, &isNullable, &colKey, &colDefault); err != nil {
		return ColumnInfo{}, err
	}
	return ColumnInfo{
		Name:       name,
		DataType:   dataType,
		Nullable:   isNullable == "YES",
		Default:    colDefault.String,
		PrimaryKey: colKey == "PRI",
	}, nil
}

func (d *MySQL) TypeName(k schema.Kind) string {
	switch k {
	case schema.KindBool:
		return "BOOLEAN"
	case schema.KindInt:
		return "BIGINT"
	case schema.KindFloat:
		return "DOUBLE"
	case schema.KindTime:
		return "DATETIME"
	case schema.KindDate:
		return "DATE"
	case schema.KindBytes:
		return "BLOB"
	default:
		// MySQL requires a length on VARCHAR.
		return "VARCHAR(255)"
	}
}

func (d *MySQL) AutoIncrementType() string { return "BIGINT AUTO_INCREMENT" }

// Upsert builds INSERT ... ON DUPLICATE KEY UPDATE. MySQL resolves the
// conflict against any unique key, so keyColumns only decide which columns
// are updated.
func (d *MySQL) Upsert(table string, columns, keyColumns []string) (string, error) {
	isKey := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		isKey[k] = true
	}

	names := make([]string, 0, len(columns))
	binds := make([]string, 0, len(columns))
	var updates []string
	for _, col := range columns {
		names = append(names, d.QuoteIdent(col))
		binds = append(binds, ":"+col)
		if !isKey[col] {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", d.QuoteIdent(col), d.QuoteIdent(col)))
		}
	}
	if len(updates) == 0 {
		// All columns are keys; refresh one of them to keep the statement valid.
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", names[0], names[0]))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		d.QuoteIdent(table),
		strings.Join(names, ", "),
		strings.Join(binds, ", "),
		strings.Join(updates, ", ")), nil
}

var mysqlForbiddenPatterns = []rule{
	patternRule(`(?i)\bLOAD_FILE\s*\(`, "LOAD_FILE()"),
	patternRule(`(?i)\bINTO\s+OUTFILE\b`, "INTO OUTFILE"),
	patternRule(`(?i)\bINTO\s+DUMPFILE\b`, "INTO DUMPFILE"),
	patternRule(`(?i)\bSLEEP\s*\(`, "SLEEP()"),
	patternRule(`(?i)\bBENCHMARK\s*\(`, "BENCHMARK()"),
	patternRule(`(?i)\bGET_LOCK\s*\(`, "GET_LOCK()"),
}

var mysqlExtraKeywords = []rule{
	keywordRule("CALL"),
	keywordRule("EXECUTE"),
	keywordRule("PREPARE"),
	keywordRule("DEALLOCATE"),
	keywordRule("REPLACE"),
	keywordRule("RENAME"),
	keywordRule("LOCK"),
	keywordRule("UNLOCK"),
	keywordRule("HANDLER"),
	keywordRule("ANALYZE"),
	keywordRule("OPTIMIZE"),
	keywordRule("REPAIR"),
	keywordRule("FLUSH"),
	keywordRule("RESET"),
	keywordRule("KILL"),
}

func (d *MySQL) ValidateReadOnly(sqlQuery string) error {
	// MySQL grammar: # comments, backslash escapes in strings, backtick
	// identifiers, no dollar quoting.
	cleaned := stripSQL(sqlQuery, stripOptions{
		hashComments:     true,
		backslashEscapes: true,
		backticks:        true,
	})

	if err := validateCommon(sqlQuery, cleaned); err != nil {
		return err
	}
	if err := checkRules(cleaned, mysqlForbiddenPatterns, "pattern"); err != nil {
		return err
	}
	return checkRules(cleaned, mysqlExtraKeywords, "keyword")
}
