package db

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/reldb-io/reldb/internal/dialect"
	"github.com/reldb-io/reldb/internal/schema"
)

// WriteMode selects how written rows meet existing ones.
type WriteMode string

const (
	// ModeInsert appends rows; key conflicts fail the write.
	ModeInsert WriteMode = "insert"
	// ModeUpsert updates existing rows on key conflict where the dialect
	// supports a native upsert clause.
	ModeUpsert WriteMode = "upsert"
)

// TableConfig describes the write target.
type TableConfig struct {
	Name string
	// CreateIfMissing creates the table from the first record's shape.
	CreateIfMissing bool
	// PrimaryKeyColumns define the table key on creation and the conflict
	// target for upserts. Empty means a synthesized integer id on creation.
	PrimaryKeyColumns []string
	Mode              WriteMode
}

// WriteRows writes all rows inside one transaction, creating the table from
// the first record when configured to. Rows may have differing column sets;
// each is written with exactly the columns it carries.
func (s *Session) WriteRows(ctx context.Context, cfg TableConfig, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeInsert
	}

	if err := s.ensureTable(ctx, cfg, rows[0]); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Statements depend only on the record's column set; cache per shape.
	statements := map[string]string{}

	for _, row := range rows {
		columns := sortedColumns(row)
		shape := fmt.Sprint(columns)

		statement, ok := statements[shape]
		if !ok {
			statement, err = s.writeStatement(cfg, columns)
			if err != nil {
				tx.Rollback()
				return err
			}
			statements[shape] = statement
		}

		if _, err := tx.NamedExecContext(ctx, statement, row); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write row to %s: %w", cfg.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit write to %s: %w", cfg.Name, err)
	}
	slog.Debug("rows written", "table", cfg.Name, "count", len(rows))
	return nil
}

func (s *Session) writeStatement(cfg TableConfig, columns []string) (string, error) {
	switch cfg.Mode {
	case ModeInsert:
		return dialect.InsertSQL(s.dialect, cfg.Name, columns), nil
	case ModeUpsert:
		statement, err := s.dialect.Upsert(cfg.Name, columns, cfg.PrimaryKeyColumns)
		if err != nil {
			return "", fmt.Errorf("upsert into %s: %w", cfg.Name, err)
		}
		return statement, nil
	default:
		return "", fmt.Errorf("unknown write mode %q", cfg.Mode)
	}
}

// ensureTable creates the target table from a sample record when it is
// missing and creation is allowed.
func (s *Session) ensureTable(ctx context.Context, cfg TableConfig, sample Row) error {
	ok, err := s.HasTable(ctx, cfg.Name)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if !cfg.CreateIfMissing {
		return fmt.Errorf("%w: %s", ErrNoTable, cfg.Name)
	}

	columns := schema.FromRecord(sample, cfg.PrimaryKeyColumns)
	ddl := dialect.CreateTableSQL(s.dialect, cfg.Name, columns)

	slog.Info("creating table", "table", cfg.Name)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", cfg.Name, err)
	}
	s.known[cfg.Name] = true
	return nil
}

func sortedColumns(row Row) []string {
	columns := make([]string, 0, len(row))
	for name := range row {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}
