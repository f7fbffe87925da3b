package executor

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/satishbabariya/schema-forge/internal/debug"
	"github.com/satishbabariya/schema-forge/migrate/sqlgen"
)

// Open connects to a database for the provider. Postgres accepts URLs or
// key=value strings, MySQL accepts go-sql-driver DSNs and SQLite accepts a
// path, optionally prefixed with sqlite://.
func Open(provider, dsn string) (*sql.DB, sqlgen.Dialect, error) {
	dialect, err := sqlgen.ParseDialect(provider)
	if err != nil {
		return nil, nil, err
	}

	driver := ""
	switch dialect.(type) {
	case *sqlgen.Postgres:
		driver = "postgres"
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			if dsn, err = pq.ParseURL(dsn); err != nil {
				return nil, nil, fmt.Errorf("invalid postgres url: %w", err)
			}
		}
	case *sqlgen.MySQL:
		driver = "mysql"
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	case *sqlgen.SQLite:
		driver = "sqlite3"
		dsn = strings.TrimPrefix(dsn, "sqlite://")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	debug.Debug("Opened database", "provider", dialect.Name())
	return db, dialect, nil
}
