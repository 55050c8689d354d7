package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/reldb-io/reldb/internal/db"
)

// errLimitReached stops a streamed read early without surfacing an error.
var errLimitReached = errors.New("limit reached")

func init() {
	var (
		table  string
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read all rows of a table",
		Long: `Read streams every row of a table to stdout, one JSON object per
line by default.

Example:
  reldb read --drivername postgresql+pg8000 --host localhost --port 5432 \
    --database calendar --username postgres --password postgres --table months`,
	}
	conn := addConnFlags(cmd)
	cmd.Flags().StringVar(&table, "table", "", "table to read")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many rows (0 = all)")
	cmd.MarkFlagRequired("table")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		src, err := conn.resolve(cmd)
		if err != nil {
			return err
		}

		enc, err := newEncoder(format, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		session, err := db.Open(cmd.Context(), src)
		if err != nil {
			return err
		}
		defer session.Close()

		count := 0
		err = session.Read(cmd.Context(), table, func(columns []string, row db.Row) error {
			if err := enc.encode(columns, row); err != nil {
				return err
			}
			count++
			if limit > 0 && count >= limit {
				return errLimitReached
			}
			return nil
		})
		if err != nil && !errors.Is(err, errLimitReached) {
			return err
		}
		return enc.flush()
	}

	rootCmd.AddCommand(cmd)
}
