package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reldb-io/reldb/internal/db"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a database",
	}
	conn := addConnFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		src, err := conn.resolve(cmd)
		if err != nil {
			return err
		}

		session, err := db.Open(cmd.Context(), src)
		if err != nil {
			return err
		}
		defer session.Close()

		tables, err := session.Tables(cmd.Context())
		if err != nil {
			return err
		}
		for _, table := range tables {
			fmt.Fprintln(cmd.OutOrStdout(), table)
		}
		return nil
	}

	rootCmd.AddCommand(cmd)
}
