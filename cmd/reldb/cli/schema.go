package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reldb-io/reldb/internal/db"
)

func init() {
	var table string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the columns of a table",
	}
	conn := addConnFlags(cmd)
	cmd.Flags().StringVar(&table, "table", "", "table to describe")
	cmd.MarkFlagRequired("table")

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

		columns, err := session.Columns(cmd.Context(), table)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COLUMN\tTYPE\tNULLABLE\tKEY\tDEFAULT")
		for _, col := range columns {
			key := ""
			if col.PrimaryKey {
				key = "PRI"
			}
			nullable := "NO"
			if col.Nullable {
				nullable = "YES"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", col.Name, col.DataType, nullable, key, col.Default)
		}
		return w.Flush()
	}

	rootCmd.AddCommand(cmd)
}
