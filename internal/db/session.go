// Package db implements the connection session: opening a database from a
// source record, streaming table reads, validated ad-hoc queries and
// transactional writes with optional table creation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/reldb-io/reldb/internal/dialect"
	"github.com/reldb-io/reldb/internal/source"
)

// Connection pool defaults, matching what a short-lived CLI process needs.
const (
	connectionTimeout = 10 * time.Second
	maxIdleConns      = 5
	maxOpenConns      = 10
	connMaxLifetime   = time.Hour
)

// MaxResultRows caps how many rows an ad-hoc query may return.
var MaxResultRows = 10000

// ErrNoTable is returned when the requested table does not exist and may
// not be created.
var ErrNoTable = errors.New("table does not exist")

// Row is one record, keyed by column name.
type Row = map[string]any

// RowFunc receives each row during a streamed read together with the result
// column order. Returning an error stops the read and surfaces the error.
type RowFunc func(columns []string, row Row) error

// Session is an open connection to one database.
type Session struct {
	db      *sqlx.DB
	dialect dialect.Dialect
	src     source.Source

	// known and columns cache table existence checks and column listings
	// for the session's lifetime.
	known   map[string]bool
	columns map[string][]dialect.ColumnInfo
}

// Open resolves the dialect of src, creates the database first when asked
// to and supported, then connects and verifies the connection.
func Open(ctx context.Context, src source.Source) (*Session, error) {
	d, err := dialect.For(src)
	if err != nil {
		return nil, err
	}

	if src.CreateIfMissing {
		if err := ensureDatabase(ctx, d, src); err != nil {
			return nil, err
		}
	}

	dsn, err := d.DSN(src)
	if err != nil {
		return nil, err
	}

	slog.Debug("connecting", "source", src.Redacted())

	conn, err := sqlx.Open(d.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Session{
		db:      conn,
		dialect: d,
		src:     src,
		known:   map[string]bool{},
		columns: map[string][]dialect.ColumnInfo{},
	}, nil
}

// Close releases the underlying connection pool.
func (s *Session) Close() error {
	return s.db.Close()
}

// Dialect returns the session's resolved dialect.
func (s *Session) Dialect() dialect.Dialect {
	return s.dialect
}

// ensureDatabase creates the target database through the dialect's
// maintenance connection. Dialects without one (sqlite, mssql) are a no-op.
func ensureDatabase(ctx context.Context, d dialect.Dialect, src source.Source) error {
	adminDSN, err := d.AdminDSN(src)
	if err != nil {
		if errors.Is(err, dialect.ErrUnsupported) {
			return nil
		}
		return err
	}

	admin, err := sqlx.Open(d.Driver(), adminDSN)
	if err != nil {
		return fmt.Errorf("failed to open maintenance connection: %w", err)
	}
	defer admin.Close()

	if query, args := d.DatabaseExistsQuery(src.Database); query != "" {
		var exists int
		err := admin.QueryRowContext(ctx, query, args...).Scan(&exists)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check database existence: %w", err)
		}
	}

	slog.Info("creating database", "database", src.Database)
	if _, err := admin.ExecContext(ctx, d.CreateDatabaseSQL(src.Database)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", src.Database, err)
	}
	return nil
}

// HasTable reports whether the table exists, caching positive answers.
func (s *Session) HasTable(ctx context.Context, table string) (bool, error) {
	if s.known[table] {
		return true, nil
	}
	query, args := s.dialect.HasTableQuery(s.src.Database, table)

	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	s.known[table] = true
	return true, nil
}

// Read streams every row of a table to fn as column-name keyed maps,
// in no particular row order.
func (s *Session) Read(ctx context.Context, table string, fn RowFunc) error {
	ok, err := s.HasTable(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoTable, table)
	}

	query := "SELECT * FROM " + s.dialect.QuoteIdent(table)
	return s.stream(ctx, query, nil, fn, 0)
}

// ReadAll materializes a whole table. Intended for small tables and tests;
// Read is the streaming path.
func (s *Session) ReadAll(ctx context.Context, table string) ([]Row, error) {
	var rows []Row
	err := s.Read(ctx, table, func(_ []string, row Row) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Query runs an ad-hoc statement after read-only validation, capped at
// MaxResultRows.
func (s *Session) Query(ctx context.Context, sqlQuery string, fn RowFunc) error {
	if err := s.dialect.ValidateReadOnly(sqlQuery); err != nil {
		return fmt.Errorf("query rejected: %w", err)
	}
	return s.stream(ctx, sqlQuery, nil, fn, MaxResultRows)
}

// Tables lists the user tables of the connected database.
func (s *Session) Tables(ctx context.Context) ([]string, error) {
	query, args := s.dialect.ListTablesQuery(s.src.Database)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Columns lists a table's columns in ordinal order, caching the listing for
// the session's lifetime.
func (s *Session) Columns(ctx context.Context, table string) ([]dialect.ColumnInfo, error) {
	if cached, ok := s.columns[table]; ok {
		return cached, nil
	}

	ok, err := s.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, table)
	}

	query, args := s.dialect.ColumnsQuery(s.src.Database, table)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []dialect.ColumnInfo
	for rows.Next() {
		col, err := s.dialect.ScanColumn(rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.columns[table] = columns
	return columns, nil
}

// stream executes query and feeds each row to fn. limit of 0 means
// unbounded.
func (s *Session) stream(ctx context.Context, query string, args []any, fn RowFunc, limit int) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read result columns: %w", err)
	}

	values := make([]any, len(columns))
	for i := range values {
		values[i] = new(any)
	}

	count := 0
	for rows.Next() {
		if limit > 0 && count >= limit {
			slog.Warn("result truncated", "limit", limit)
			break
		}
		if err := rows.Scan(values...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, name := range columns {
			row[name] = normalize(*(values[i].(*any)))
		}
		if err := fn(columns, row); err != nil {
			return err
		}
		count++
	}
	return rows.Err()
}

// normalize converts driver-specific scan results to plain Go values:
// MySQL and SQLite text columns arrive as []byte.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
