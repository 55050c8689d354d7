// Package dialect abstracts per-database behavior: connection strings,
// identifier quoting, catalog queries, DDL type names, upsert statements and
// read-only SQL validation. Each supported database (PostgreSQL, MySQL,
// SQLite, SQL Server) implements the Dialect interface.
package dialect

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/reldb-io/reldb/internal/schema"
	"github.com/reldb-io/reldb/internal/source"
)

var (
	// ErrUnknownDialect is returned for drivernames no dialect claims.
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrUnsupported marks operations a dialect cannot perform, such as
	// upserts on SQL Server or database creation on SQLite.
	ErrUnsupported = errors.New("unsupported by dialect")
)

// ColumnInfo describes one column of an existing table, as reported by the
// database catalog.
type ColumnInfo struct {
	Name       string
	DataType   string
	Nullable   bool
	Default    string
	PrimaryKey bool
}

// Dialect is the contract for database-specific behavior.
type Dialect interface {
	// Name returns the canonical dialect name (e.g. "postgresql").
	Name() string

	// Driver returns the database/sql driver name to open connections with.
	Driver() string

	// DSN builds a driver connection string from a source record. It
	// reports all missing required fields at once.
	DSN(src source.Source) (string, error)

	// AdminDSN builds a connection string to the dialect's maintenance
	// database, used for CREATE DATABASE. Returns ErrUnsupported where
	// databases cannot be created over a connection.
	AdminDSN(src source.Source) (string, error)

	// DatabaseExistsQuery returns a query yielding at least one row when
	// the named database exists.
	DatabaseExistsQuery(name string) (string, []any)

	// CreateDatabaseSQL returns the statement creating the named database.
	CreateDatabaseSQL(name string) string

	// QuoteIdent quotes a table or column name.
	QuoteIdent(name string) string

	// Placeholder returns the bindvar for the i-th query parameter
	// (1-based): $1 on postgres, ? on mysql and sqlite, @p1 on mssql.
	Placeholder(i int) string

	// HasTableQuery returns a query yielding at least one row when the
	// table exists.
	HasTableQuery(database, table string) (string, []any)

	// ListTablesQuery returns the query listing user table names.
	ListTablesQuery(database string) (string, []any)

	// ColumnsQuery returns the query listing a table's columns in
	// ordinal order; its rows are decoded by ScanColumn.
	ColumnsQuery(database, table string) (string, []any)

	// ScanColumn scans one row of the ColumnsQuery result.
	ScanColumn(rows *sql.Rows) (ColumnInfo, error)

	// TypeName maps an inferred column kind to a DDL type name.
	TypeName(k schema.Kind) string

	// AutoIncrementType is the DDL type for a synthesized integer primary
	// key the database fills in itself.
	AutoIncrementType() string

	// Upsert builds an insert-or-update statement with :name bindvars.
	// keyColumns are the conflict target where the dialect needs one.
	Upsert(table string, columns, keyColumns []string) (string, error)

	// ValidateReadOnly rejects SQL that could mutate state. Keywords
	// inside string literals and comments do not trigger rejection.
	ValidateReadOnly(sqlQuery string) error
}

var registry = map[string]Dialect{}

func register(d Dialect, aliases ...string) {
	registry[d.Name()] = d
	for _, alias := range aliases {
		registry[alias] = d
	}
}

// Parse resolves a SQLAlchemy-style drivername ("dialect" or
// "dialect+driver") to a Dialect. The "+driver" suffix is accepted and
// ignored so launcher invocations like "postgresql+pg8000" keep working.
func Parse(drivername string) (Dialect, error) {
	name := strings.ToLower(strings.TrimSpace(drivername))
	if idx := strings.Index(name, "+"); idx != -1 {
		name = name[:idx]
	}
	if name == "" {
		return nil, fmt.Errorf("%w: drivername is empty", ErrUnknownDialect)
	}
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownDialect, drivername, strings.Join(Names(), ", "))
	}
	return d, nil
}

// For resolves the dialect of a source record.
func For(src source.Source) (Dialect, error) {
	return Parse(src.Drivername)
}

// Names lists all registered dialect names and aliases, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// missingFields collects the names of required source fields that are
// empty, so a DSN error can report them all at once.
func missingFields(src source.Source, fields ...string) []string {
	var missing []string
	for _, f := range fields {
		switch f {
		case "host":
			if src.Host == "" {
				missing = append(missing, f)
			}
		case "port":
			if src.Port == 0 {
				missing = append(missing, f)
			}
		case "database":
			if src.Database == "" {
				missing = append(missing, f)
			}
		case "username":
			if src.Username == "" {
				missing = append(missing, f)
			}
		}
	}
	return missing
}
