package cli

import (
	"github.com/spf13/cobra"

	"github.com/reldb-io/reldb/internal/db"
)

func init() {
	var format string

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query",
		Long: `Query executes a single SELECT, SHOW, DESCRIBE or EXPLAIN statement
and streams the result to stdout. Statements that could mutate state are
rejected before reaching the database.`,
		Args: cobra.ExactArgs(1),
	}
	conn := addConnFlags(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")

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

		if err := session.Query(cmd.Context(), args[0], enc.encode); err != nil {
			return err
		}
		return enc.flush()
	}

	rootCmd.AddCommand(cmd)
}
