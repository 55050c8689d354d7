package dialect

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		drivername string
		want       string
	}{
		{"postgresql", "postgresql"},
		{"postgresql+pg8000", "postgresql"},
		{"postgresql+psycopg2", "postgresql"},
		{"postgres", "postgresql"},
		{"POSTGRESQL", "postgresql"},
		{"mysql", "mysql"},
		{"mysql+pymysql", "mysql"},
		{"mariadb", "mysql"},
		{"sqlite", "sqlite"},
		{"sqlite3", "sqlite"},
		{"mssql", "mssql"},
		{"sqlserver", "mssql"},
		{"  mssql  ", "mssql"},
	}

	for _, tc := range tests {
		t.Run(tc.drivername, func(t *testing.T) {
			d, err := Parse(tc.drivername)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.drivername, err)
			}
			if d.Name() != tc.want {
				t.Errorf("Parse(%q) = %s, want %s", tc.drivername, d.Name(), tc.want)
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		dialect Dialect
		first   string
		second  string
	}{
		{&Postgres{}, "$1", "$2"},
		{&MySQL{}, "?", "?"},
		{&SQLite{}, "?", "?"},
		{&MSSQL{}, "@p1", "@p2"},
	}

	for _, tc := range tests {
		t.Run(tc.dialect.Name(), func(t *testing.T) {
			if got := tc.dialect.Placeholder(1); got != tc.first {
				t.Errorf("Placeholder(1) = %s, want %s", got, tc.first)
			}
			if got := tc.dialect.Placeholder(2); got != tc.second {
				t.Errorf("Placeholder(2) = %s, want %s", got, tc.second)
			}
		})
	}
}

// The catalog queries must bind their arguments through the dialect's own
// placeholder form.
func TestCatalogQueriesUsePlaceholders(t *testing.T) {
	for _, d := range []Dialect{&Postgres{}, &MySQL{}, &MSSQL{}} {
		t.Run(d.Name(), func(t *testing.T) {
			query, args := d.ColumnsQuery("calendar", "months")
			if len(args) != 2 {
				t.Fatalf("ColumnsQuery args = %d, want 2", len(args))
			}
			for i := range args {
				if !strings.Contains(query, d.Placeholder(i+1)) {
					t.Errorf("ColumnsQuery is missing placeholder %s: %s", d.Placeholder(i+1), query)
				}
			}

			query, args = d.HasTableQuery("calendar", "months")
			if len(args) != 2 {
				t.Fatalf("HasTableQuery args = %d, want 2", len(args))
			}
			if !strings.Contains(query, d.Placeholder(len(args))) {
				t.Errorf("HasTableQuery is missing placeholder %s: %s", d.Placeholder(len(args)), query)
			}
		})
	}

	sqlite := &SQLite{}
	query, args := sqlite.HasTableQuery("", "months")
	if len(args) != 1 || !strings.Contains(query, sqlite.Placeholder(1)) {
		t.Errorf("sqlite HasTableQuery is missing its placeholder: %s", query)
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, drivername := range []string{"", "oracle", "mongodb+srv"} {
		t.Run(drivername, func(t *testing.T) {
			_, err := Parse(drivername)
			if !errors.Is(err, ErrUnknownDialect) {
				t.Errorf("Parse(%q) = %v, want ErrUnknownDialect", drivername, err)
			}
		})
	}
}
