package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"nudem-backend/internal/config"
)

// Open connects to the configured store. A postgres:// DSN uses lib/pq, any
// other value is treated as a SQLite path. Connection attempts retry a few
// times so the service survives a database that is still starting.
func Open(cfg config.DatabaseConfig) (*bun.DB, error) {
	driver, dialect := "sqlite", "sqlite"
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver, dialect = "postgres", "postgres"
	}

	var sqldb *sql.DB
	var err error
	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		sqldb, err = sql.Open(driver, cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	if dialect == "postgres" {
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// IsPostgres reports whether the DB was opened with the postgres dialect.
func IsPostgres(db *bun.DB) bool {
	return db.Dialect().Name().String() == "pg"
}
