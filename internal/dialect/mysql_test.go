package dialect

import (
	"strings"
	"testing"

	"github.com/reldb-io/reldb/internal/source"
)

func mysqlSource() source.Source {
	return source.Source{
		Drivername: "mysql",
		Host:       "localhost",
		Port:       3306,
		Database:   "calendar",
		Username:   "root",
		Password:   "secret",
	}
}

func TestMySQLDSN(t *testing.T) {
	d := &MySQL{}

	dsn, err := d.DSN(mysqlSource())
	if err != nil {
		t.Fatalf("DSN returned error: %v", err)
	}
	want := "root:secret@tcp(localhost:3306)/calendar?parseTime=true"
	if dsn != want {
		t.Errorf("DSN = %s, want %s", dsn, want)
	}
}

func TestMySQLAdminDSN_NoDatabase(t *testing.T) {
	d := &MySQL{}

	dsn, err := d.AdminDSN(mysqlSource())
	if err != nil {
		t.Fatalf("AdminDSN returned error: %v", err)
	}
	if !strings.Contains(dsn, ")/?") {
		t.Errorf("AdminDSN should not select a database: %s", dsn)
	}
}

func TestMySQLDSN_MissingFields(t *testing.T) {
	d := &MySQL{}
	src := mysqlSource()
	src.Host = ""
	src.Username = ""

	_, err := d.DSN(src)
	if err == nil {
		t.Fatal("expected error for missing fields")
	}
	if !strings.Contains(err.Error(), "host") || !strings.Contains(err.Error(), "username") {
		t.Errorf("error does not name the missing fields: %v", err)
	}
}

func TestMySQLUpsert(t *testing.T) {
	d := &MySQL{}

	stmt, err := d.Upsert("students", []string{"id", "name"}, []string{"id"})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	want := "INSERT INTO `students` (`id`, `name`) VALUES (:id, :name) " +
		"ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)"
	if stmt != want {
		t.Errorf("Upsert = %s, want %s", stmt, want)
	}
}

func TestMySQLValidateReadOnly_Allowed(t *testing.T) {
	d := &MySQL{}
	allowed := []string{
		"SELECT * FROM months",
		"SHOW TABLES",
		"DESCRIBE months",
		"DESC months",
		"EXPLAIN SELECT * FROM months",
		"SELECT * FROM `months` WHERE name = 'DROP TABLE months'",
	}

	for _, query := range allowed {
		t.Run(query, func(t *testing.T) {
			if err := d.ValidateReadOnly(query); err != nil {
				t.Errorf("expected query to be allowed, got: %v", err)
			}
		})
	}
}

func TestMySQLValidateReadOnly_Blocked(t *testing.T) {
	d := &MySQL{}
	blocked := []struct {
		query string
		why   string
	}{
		{"INSERT INTO months VALUES (1, 'Jan')", "INSERT"},
		{"REPLACE INTO months VALUES (1, 'Jan')", "REPLACE"},
		{"SELECT LOAD_FILE('/etc/passwd')", "LOAD_FILE"},
		{"SELECT * FROM months INTO OUTFILE '/tmp/out'", "INTO OUTFILE"},
		{"SELECT SLEEP(10)", "SLEEP"},
		{"SELECT BENCHMARK(1000000, MD5('x'))", "BENCHMARK"},
		{"SELECT GET_LOCK('l', 10)", "GET_LOCK"},
		{"LOCK TABLES months READ", "LOCK"},
		{"FLUSH PRIVILEGES", "FLUSH"},
		{"KILL 42", "KILL"},
		{"SELECT 1; DROP TABLE months", "multiple statements"},
	}

	for _, tc := range blocked {
		t.Run(tc.query, func(t *testing.T) {
			if err := d.ValidateReadOnly(tc.query); err == nil {
				t.Errorf("expected query to be blocked for %s", tc.why)
			}
		})
	}
}

func TestMySQLStrip_HashComment(t *testing.T) {
	cleaned := stripSQL("SELECT 1 # DROP TABLE months", stripOptions{hashComments: true})
	if strings.Contains(cleaned, "DROP") {
		t.Errorf("hash comment was not stripped: %s", cleaned)
	}
}

func TestMySQLStrip_BackslashEscape(t *testing.T) {
	cleaned := stripSQL(`SELECT * FROM t WHERE name = 'O\'Brien; DROP TABLE months'`,
		stripOptions{backslashEscapes: true})
	if strings.Contains(cleaned, "DROP") {
		t.Errorf("backslash-escaped string was not stripped: %s", cleaned)
	}
}
