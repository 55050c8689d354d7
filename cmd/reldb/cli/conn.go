package cli

import (
	"github.com/spf13/cobra"

	"github.com/reldb-io/reldb/internal/source"
)

// connOptions hold the connection flags shared by every command that talks
// to a database. The flag names mirror the classic launcher interface:
// --drivername --host --port --database --username --password.
type connOptions struct {
	drivername      string
	host            string
	port            int
	database        string
	username        string
	password        string
	sslmode         string
	createIfMissing bool
}

func addConnFlags(cmd *cobra.Command) *connOptions {
	opts := &connOptions{}
	f := cmd.Flags()
	f.StringVar(&opts.drivername, "drivername", "", `database dialect, optionally with a driver suffix (e.g. "postgresql+pg8000")`)
	f.StringVar(&opts.host, "host", "", "database server host")
	f.IntVar(&opts.port, "port", 0, "database server port")
	f.StringVar(&opts.database, "database", "", "database name (file path for sqlite)")
	f.StringVar(&opts.username, "username", "", "database user")
	f.StringVar(&opts.password, "password", "", "database password (prefer RELDB_PASSWORD)")
	f.StringVar(&opts.sslmode, "sslmode", "", "postgres sslmode (default prefer)")
	return opts
}

// resolve merges config file, environment and flags into a Source. Flags
// that were set on the command line win.
func (o *connOptions) resolve(cmd *cobra.Command) (source.Source, error) {
	src, err := source.Load(source.LoadOptions{ConfigFile: cfgFile, EnvFile: envFile})
	if err != nil {
		return source.Source{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("drivername") {
		src.Drivername = o.drivername
	}
	if flags.Changed("host") {
		src.Host = o.host
	}
	if flags.Changed("port") {
		src.Port = o.port
	}
	if flags.Changed("database") {
		src.Database = o.database
	}
	if flags.Changed("username") {
		src.Username = o.username
	}
	if flags.Changed("password") {
		src.Password = o.password
	}
	if flags.Changed("sslmode") {
		src.SSLMode = o.sslmode
	}
	if o.createIfMissing {
		src.CreateIfMissing = true
	}
	return src, nil
}
