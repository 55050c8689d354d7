package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment-variable configuration,
// e.g. RELDB_HOST, RELDB_PASSWORD.
const EnvPrefix = "RELDB"

// LoadOptions control where Load looks for connection parameters.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. When empty, Load looks
	// for reldb.yaml in the working directory and ignores its absence.
	ConfigFile string
	// EnvFile is a .env file loaded into the process environment before
	// reading RELDB_* variables. When empty, no .env file is read.
	EnvFile string
}

// Load resolves a Source from a config file and the environment.
// Environment variables win over config file values; CLI flags are applied
// on top by the caller.
func Load(opts LoadOptions) (Source, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return Source{}, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"drivername", "host", "port", "database",
		"username", "password", "sslmode", "create_if_missing",
	} {
		// AutomaticEnv only kicks in for keys viper knows about.
		if err := v.BindEnv(key); err != nil {
			return Source{}, err
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Source{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("reldb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Source{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var src Source
	if err := v.Unmarshal(&src); err != nil {
		return Source{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return src, nil
}
