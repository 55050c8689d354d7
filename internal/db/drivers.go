package db

import (
	"github.com/jmoiron/sqlx"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// sqlx knows the bindvar style of "sqlite3" but not of the modernc
	// driver, which registers as "sqlite".
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}
