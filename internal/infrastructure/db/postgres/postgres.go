// Package postgres implements the relational repositories. Queries are written
// in the subset of SQL shared by PostgreSQL and SQLite so the same code runs
// against a sqlite:// URL locally and in tests.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/prestamos/loan-tracker/internal/infrastructure/db/postgres/migrations"
)

const (
	defaultTimeout = 5 * time.Second
	sqlitePrefix   = "sqlite://"
)

// Config captures the settings for opening the relational database.
type Config struct {
	URL          string
	MaxOpenConns int
	Timeout      time.Duration
}

// Connect opens the database named by cfg.URL, verifies connectivity and
// applies pending migrations. URLs starting with sqlite:// use the embedded
// SQLite driver; anything else is handed to lib/pq.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	driver, dsn := driverFor(cfg.URL)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// one connection: an in-memory database lives and dies with it
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}

	if driver == "sqlite" {
		if _, err := db.ExecContext(pingCtx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := ApplyMigrations(pingCtx, db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func driverFor(url string) (driver, dsn string) {
	if strings.HasPrefix(url, sqlitePrefix) {
		return "sqlite", strings.TrimPrefix(url, sqlitePrefix)
	}
	return "postgres", url
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
