package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reldb-io/reldb/internal/db"
)

func init() {
	var (
		table       string
		input       string
		mode        string
		primaryKeys []string
		create      bool
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write rows to a table",
		Long: `Write reads JSON-lines records from stdin (or --input) and writes them
to a table inside one transaction. With --create-if-missing the table is
created from the first record's shape, and --create-if-missing on the
database level applies too for postgres and mysql.

Example:
  cat months.jsonl | reldb write --drivername postgresql --host localhost \
    --port 5432 --database calendar --username postgres --password postgres \
    --table months --create-if-missing --primary-key num`,
	}
	conn := addConnFlags(cmd)
	cmd.Flags().StringVar(&table, "table", "", "table to write")
	cmd.Flags().StringVar(&input, "input", "", "read records from this file instead of stdin")
	cmd.Flags().StringVar(&mode, "mode", string(db.ModeInsert), "write mode: insert or upsert")
	cmd.Flags().StringSliceVar(&primaryKeys, "primary-key", nil, "primary key column(s), for table creation and upserts")
	cmd.Flags().BoolVar(&create, "create-if-missing", false, "create the database and table when missing")
	cmd.MarkFlagRequired("table")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		conn.createIfMissing = create
		src, err := conn.resolve(cmd)
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if input != "" {
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		rows, err := decodeRecords(in)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return errors.New("no input records")
		}

		session, err := db.Open(cmd.Context(), src)
		if err != nil {
			return err
		}
		defer session.Close()

		cfg := db.TableConfig{
			Name:              table,
			CreateIfMissing:   create,
			PrimaryKeyColumns: primaryKeys,
			Mode:              db.WriteMode(mode),
		}
		if err := session.WriteRows(cmd.Context(), cfg, rows); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), table)
		return nil
	}

	rootCmd.AddCommand(cmd)
}

// decodeRecords reads a JSON-lines stream (a plain JSON array also works)
// into rows.
func decodeRecords(r io.Reader) ([]db.Row, error) {
	dec := json.NewDecoder(r)

	var rows []db.Row
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return nil, fmt.Errorf("bad input record: %w", err)
		}

		// Accept either one object per document or an array of objects.
		var row db.Row
		if err := json.Unmarshal(raw, &row); err == nil {
			rows = append(rows, row)
			continue
		}
		var batch []db.Row
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("bad input record: %w", err)
		}
		rows = append(rows, batch...)
	}
}
