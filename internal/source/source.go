// Package source holds the connection-parameter record for a relational
// database and resolves it from flags, environment variables, config files
// and .env files.
package source

import (
	"fmt"
	"strings"
)

// Source describes how to reach one database. It is assembled once by the
// CLI (or a library caller) and never mutated afterwards.
type Source struct {
	// Drivername selects the dialect, optionally with a driver suffix in
	// the form "dialect+driver" (e.g. "postgresql+pg8000"). The suffix is
	// accepted for compatibility and ignored; the dialect part alone
	// decides which database/sql driver is used.
	Drivername string `mapstructure:"drivername"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Database   string `mapstructure:"database"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`

	// SSLMode applies to postgres only. Empty means "prefer".
	SSLMode string `mapstructure:"sslmode"`

	// CreateIfMissing creates the database on first connect when the
	// dialect supports it (postgres, mysql).
	CreateIfMissing bool `mapstructure:"create_if_missing"`
}

// DialectName returns the dialect part of Drivername, lowercased, with any
// "+driver" suffix removed.
func (s Source) DialectName() string {
	name := strings.ToLower(strings.TrimSpace(s.Drivername))
	if idx := strings.Index(name, "+"); idx != -1 {
		name = name[:idx]
	}
	return name
}

// Addr returns "host:port" for log output.
func (s Source) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Redacted renders the source for logging with the password masked.
func (s Source) Redacted() string {
	password := ""
	if s.Password != "" {
		password = "***"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		s.DialectName(), s.Username, password, s.Host, s.Port, s.Database)
}
