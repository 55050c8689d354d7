package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectName(t *testing.T) {
	tests := []struct {
		drivername string
		want       string
	}{
		{"postgresql+pg8000", "postgresql"},
		{"postgresql", "postgresql"},
		{"MySQL+pymysql", "mysql"},
		{" sqlite ", "sqlite"},
	}

	for _, tc := range tests {
		src := Source{Drivername: tc.drivername}
		assert.Equal(t, tc.want, src.DialectName())
	}
}

func TestRedacted(t *testing.T) {
	src := Source{
		Drivername: "postgresql+pg8000",
		Host:       "localhost",
		Port:       5432,
		Database:   "calendar",
		Username:   "postgres",
		Password:   "hunter2",
	}

	redacted := src.Redacted()
	assert.NotContains(t, redacted, "hunter2")
	assert.Contains(t, redacted, "calendar")
	assert.Contains(t, redacted, "postgres:***@localhost:5432")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reldb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
drivername: postgresql+pg8000
host: db.internal
port: 5432
database: calendar
username: reader
password: secret
`), 0o600))

	src, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "postgresql+pg8000", src.Drivername)
	assert.Equal(t, "db.internal", src.Host)
	assert.Equal(t, 5432, src.Port)
	assert.Equal(t, "calendar", src.Database)
	assert.Equal(t, "reader", src.Username)
	assert.Equal(t, "secret", src.Password)
}

func TestLoad_EnvOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reldb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("password: from-file\nhost: from-file\n"), 0o600))

	t.Setenv("RELDB_PASSWORD", "from-env")

	src, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "from-env", src.Password)
	assert.Equal(t, "from-file", src.Host)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("RELDB_DATABASE=calendar\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RELDB_DATABASE") })

	src, err := Load(LoadOptions{EnvFile: envPath})
	require.NoError(t, err)

	assert.Equal(t, "calendar", src.Database)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(LoadOptions{EnvFile: "/does/not/exist.env"})
	assert.Error(t, err)
}

func TestLoad_NoConfigAnywhere(t *testing.T) {
	// Absent optional config is not an error; the CLI validates later.
	src, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, Source{}, src)
}
