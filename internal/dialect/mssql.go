package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/reldb-io/reldb/internal/schema"
	"github.com/reldb-io/reldb/internal/source"
)

func init() {
	register(&MSSQL{}, "sqlserver")
}

// MSSQL implements Dialect for SQL Server via
// github.com/denisenkom/go-mssqldb.
type MSSQL struct{}

func (d *MSSQL) Name() string   { return "mssql" }
func (d *MSSQL) Driver() string { return "sqlserver" }

func (d *MSSQL) DSN(src source.Source) (string, error) {
	missing := missingFields(src, "host", "port", "database", "username")
	if len(missing) > 0 {
		return "", fmt.Errorf("missing required connection parameters: %v", missing)
	}
	return fmt.Sprintf("server=%s;user id=%s;password=%s;port=%d;database=%s;",
		src.Host, src.Username, src.Password, src.Port, src.Database), nil
}

func (d *MSSQL) AdminDSN(src source.Source) (string, error) {
	return "", fmt.Errorf("%w: database creation is not implemented for mssql", ErrUnsupported)
}

func (d *MSSQL) DatabaseExistsQuery(name string) (string, []any) {
	return "", nil
}

func (d *MSSQL) CreateDatabaseSQL(name string) string { return "" }

func (d *MSSQL) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d *MSSQL) Placeholder(i int) string {
	return fmt.Sprintf("@p%d", i)
}

func (d *MSSQL) HasTableQuery(database, table string) (string, []any) {
	return fmt.Sprintf(`SELECT 1 FROM information_schema.tables WHERE table_catalog = %s AND table_name = %s`,
			d.Placeholder(1), d.Placeholder(2)),
		[]any{database, table}
}

func (d *MSSQL) ListTablesQuery(database string) (string, []any) {
	return fmt.Sprintf(`SELECT table_name FROM information_schema.tables
		WHERE table_type = 'BASE TABLE' AND table_catalog = %s ORDER BY table_name`,
			d.Placeholder(1)),
		[]any{database}
}

func (d *MSSQL) ColumnsQuery(database, table string) (string, []any) {
	return fmt.Sprintf(`SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_catalog = %s AND table_name = %s
		ORDER BY ordinal_position`, d.Placeholder(1), d.Placeholder(2)), []any{database, table}
}

func (d *MSSQL) ScanColumn(rows *sql.Rows) (ColumnInfo, error) {
	var name, dataType, isNullable string
	var colDefault sql.NullString

	if err := rows.Scan(&name, &dataType, &isNullable, &colDefault); err != nil {
		return ColumnInfo{}, err
	}
	return ColumnInfo{
		Name:     name,
		DataType: dataType,
		Nullable: isNullable == "YES",
		Default:  colDefault.String,
	}, nil
}

func (d *MSSQL) TypeName(k schema.Kind) string {
	switch k {
	case schema.KindBool:
		return "BIT"
	case schema.KindInt:
		return "BIGINT"
	case schema.KindFloat:
		return "FLOAT"
	case schema.KindTime:
		return "DATETIME2"
	case schema.KindDate:
		return "DATE"
	case schema.KindBytes:
		return "VARBINARY(MAX)"
	default:
		return "NVARCHAR(255)"
	}
}

func (d *MSSQL) AutoIncrementType() string { return "BIGINT IDENTITY(1,1)" }

// Upsert is unsupported: SQL Server has no single-statement upsert clause,
// only MERGE, which is not generated here.
func (d *MSSQL) Upsert(table string, columns, keyColumns []string) (string, error) {
	return "", fmt.Errorf("%w: mssql has no upsert clause, use insert mode", ErrUnsupported)
}

var mssqlForbiddenPatterns = []rule{
	patternRule(`(?i)\bxp_cmdshell\b`, "xp_cmdshell"),
	patternRule(`(?i)\bsp_configure\b`, "sp_configure"),
	patternRule(`(?i)\bOPENROWSET\s*\(`, "OPENROWSET()"),
	patternRule(`(?i)\bOPENQUERY\s*\(`, "OPENQUERY()"),
	patternRule(`(?i)\bOPENDATASOURCE\s*\(`, "OPENDATASOURCE()"),
	patternRule(`(?i)\bWAITFOR\s+DELAY\b`, "WAITFOR DELAY"),
	patternRule(`(?i)\bWAITFOR\s+TIME\b`, "WAITFOR TIME"),
	patternRule(`(?i)\bBULK\s+INSERT\b`, "BULK INSERT"),
}

var mssqlExtraKeywords = []rule{
	keywordRule("EXEC"),
	keywordRule("EXECUTE"),
	keywordRule("MERGE"),
	keywordRule("BACKUP"),
	keywordRule("RESTORE"),
	keywordRule("SHUTDOWN"),
	keywordRule("RECONFIGURE"),
	keywordRule("DBCC"),
	keywordRule("KILL"),
}

func (d *MSSQL) ValidateReadOnly(sqlQuery string) error {
	// T-SQL grammar: no # comments, no backslash escapes, [bracket]
	// identifiers.
	cleaned := stripSQL(sqlQuery, stripOptions{brackets: true})

	if err := validateCommon(sqlQuery, cleaned); err != nil {
		return err
	}
	if err := checkRules(cleaned, mssqlForbiddenPatterns, "pattern"); err != nil {
		return err
	}
	return checkRules(cleaned, mssqlExtraKeywords, "keyword")
}
