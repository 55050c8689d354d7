package dialect

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/reldb-io/reldb/internal/schema"
	"github.com/reldb-io/reldb/internal/source"
)

func init() {
	register(&Postgres{}, "postgres", "pg")
}

// Postgres implements Dialect for PostgreSQL via github.com/lib/pq.
type Postgres struct{}

func (d *Postgres) Name() string   { return "postgresql" }
func (d *Postgres) Driver() string { return "postgres" }

func (d *Postgres) DSN(src source.Source) (string, error) {
	return d.dsn(src, src.Database)
}

// AdminDSN connects to the maintenance database so CREATE DATABASE can run
// before the target database exists.
func (d *Postgres) AdminDSN(src source.Source) (string, error) {
	return d.dsn(src, "postgres")
}

func (d *Postgres) dsn(src source.Source, database string) (string, error) {
	missing := missingFields(src, "host", "port", "database", "username")
	if len(missing) > 0 {
		return "", fmt.Errorf("missing required connection parameters: %v", missing)
	}
	sslmode := src.SSLMode
	if sslmode == "" {
		sslmode = "prefer"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.PathEscape(src.Username), url.PathEscape(src.Password),
		src.Host, src.Port, database, sslmode), nil
}

func (d *Postgres) DatabaseExistsQuery(name string) (string, []any) {
	return fmt.Sprintf(`SELECT 1 FROM pg_database WHERE datname = %s`, d.Placeholder(1)), []any{name}
}

func (d *Postgres) CreateDatabaseSQL(name string) string {
	// CREATE DATABASE cannot be parameterized.
	return "CREATE DATABASE " + d.QuoteIdent(name)
}

func (d *Postgres) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *Postgres) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

func (d *Postgres) HasTableQuery(database, table string) (string, []any) {
	return fmt.Sprintf(`SELECT 1 FROM information_schema.tables
		WHERE table_catalog = %s AND table_schema = 'public' AND table_name = %s`,
			d.Placeholder(1), d.Placeholder(2)),
		[]any{database, table}
}

func (d *Postgres) ListTablesQuery(database string) (string, []any) {
	return fmt.Sprintf(`SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_catalog = %s ORDER BY table_name`,
			d.Placeholder(1)),
		[]any{database}
}

func (d *Postgres) ColumnsQuery(database, table string) (string, []any) {
	p1, p2 := d.Placeholder(1), d.Placeholder(2)
	return fmt.Sprintf(`SELECT c.column_name, c.data_type, c.is_nullable, c.column_default,
			COALESCE(k.is_key, false)
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name, true AS is_key
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
				AND tc.table_name = kcu.table_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_catalog = %[1]s
				AND tc.table_schema = 'public'
				AND tc.table_name = %[2]s
		) k ON k.column_name = c.column_name
		WHERE c.table_catalog = %[1]s AND c.table_schema = 'public' AND c.table_name = %[2]s
		ORDER BY c.ordinal_position`, p1, p2), []any{database, table}
}

func (d *Postgres) ScanColumn(rows *sql.Rows) (ColumnInfo, error) {
	var name, dataType, isNullable string
	var colDefault sql.NullString
	var isKey bool

	if err := rows.Scan(&name, &dataType, &isNullable, &colDefault, &isKey); err != nil {
		return ColumnInfo{}, err
	}
	return ColumnInfo{
		Name:       name,
		DataType:   dataType,
		Nullable:   isNullable == "YES",
		Default:    colDefault.String,
		PrimaryKey: isKey,
	}, nil
}

func (d *Postgres) TypeName(k schema.Kind) string {
	switch k {
	case schema.KindBool:
		return "BOOLEAN"
	case schema.KindInt:
		return "BIGINT"
	case schema.KindFloat:
		return "DOUBLE PRECISION"
	case schema.KindTime:
		return "TIMESTAMP"
	case schema.KindDate:
		return "DATE"
	case schema.KindBytes:
		return "BYTEA"
	default:
		// Length-free VARCHAR is valid on PostgreSQL.
		return "VARCHAR"
	}
}

func (d *Postgres) AutoIncrementType() string { return "SERIAL" }

func (d *Postgres) Upsert(table string, columns, keyColumns []string) (string, error) {
	if len(keyColumns) == 0 {
		return "", fmt.Errorf("%w: postgresql upsert needs key columns", ErrUnsupported)
	}
	return onConflictUpsert(d, table, columns, keyColumns), nil
}

// pgForbiddenPatterns match against the original SQL: functions touching the
// filesystem or bulk transfer paths.
var pgForbiddenPatterns = []rule{
	patternRule(`(?i)\bCOPY\s+.*\bTO\b`, "COPY ... TO"),
	patternRule(`(?i)\bCOPY\s+.*\bFROM\b`, "COPY ... FROM"),
	patternRule(`(?i)\bpg_read_file\s*\(`, "pg_read_file()"),
	patternRule(`(?i)\bpg_read_binary_file\s*\(`, "pg_read_binary_file()"),
	patternRule(`(?i)\bpg_ls_dir\s*\(`, "pg_ls_dir()"),
	patternRule(`(?i)\blo_import\s*\(`, "lo_import()"),
	patternRule(`(?i)\blo_export\s*\(`, "lo_export()"),
	patternRule(`(?i)\bpg_sleep\s*\(`, "pg_sleep()"),
	patternRule(`(?i)\bpg_sleep_for\s*\(`, "pg_sleep_for()"),
	patternRule(`(?i)\bpg_sleep_until\s*\(`, "pg_sleep_until()"),
	patternRule(`(?i)\bpg_advisory_lock\s*\(`, "pg_advisory_lock()"),
	patternRule(`(?i)\bpg_advisory_xact_lock\s*\(`, "pg_advisory_xact_lock()"),
	patternRule(`(?i)\bpg_try_advisory_lock\s*\(`, "pg_try_advisory_lock()"),
}

var pgExtraKeywords = []rule{
	keywordRule("CALL"),
	keywordRule("EXECUTE"),
	keywordRule("COPY"),
	keywordRule("LISTEN"),
	keywordRule("NOTIFY"),
	keywordRule("PREPARE"),
	keywordRule("DEALLOCATE"),
	keywordRule("VACUUM"),
	keywordRule("REINDEX"),
	keywordRule("CLUSTER"),
}

func (d *Postgres) ValidateReadOnly(sqlQuery string) error {
	// No # comments, no backticks, dollar-quoted strings, no backslash
	// escaping by default.
	cleaned := stripSQL(sqlQuery, stripOptions{dollarQuoting: true})

	if err := validateCommon(sqlQuery, cleaned); err != nil {
		return err
	}
	if err := checkRules(sqlQuery, pgForbiddenPatterns, "pattern"); err != nil {
		return err
	}
	return checkRules(cleaned, pgExtraKeywords, "keyword")
}
