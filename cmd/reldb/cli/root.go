// Package cli implements the reldb command-line interface using Cobra:
// commands for reading, querying and writing relational database tables
// across the supported dialects.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "reldb",
	Short: "Read and write relational database tables",
	Long: `reldb reads rows from and writes rows to relational database tables
across PostgreSQL, MySQL, SQLite and SQL Server.

Connections are described by a drivername (e.g. "postgresql+pg8000"), host,
port, database, username and password. Parameters can come from flags,
RELDB_* environment variables, a config file or a .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

// Execute runs the root command. The context cancels running commands on
// SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./reldb.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this .env file")
}
