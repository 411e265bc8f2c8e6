package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	driver string
}

// NewDB opens and pings a database connection.
// For postgres the dsn is a connection string such as
// "host=localhost port=5432 user=postgres password=postgres dbname=portfolio sslmode=disable";
// for sqlite it is a file path or ":memory:".
func NewDB(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Every sqlite connection to ":memory:" is a separate database
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: driver}, nil
}

// Driver returns the name of the driver the connection was opened with
func (db *DB) Driver() string {
	return db.driver
}

// EnsureSchema creates the tables if they do not exist yet.
// The statements are portable between postgres and sqlite; decimals and
// timestamps are stored as text.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lots (
		id          TEXT PRIMARY KEY,
		symbol      TEXT NOT NULL,
		asset_class TEXT NOT NULL,
		quantity    TEXT NOT NULL,
		buy_price   TEXT NOT NULL,
		buy_time    TEXT NOT NULL,
		buy_day     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lots_symbol_day ON lots (symbol, buy_day)`,
	`CREATE TABLE IF NOT EXISTS watchlist_assets (
		id          TEXT PRIMARY KEY,
		symbol      TEXT NOT NULL UNIQUE,
		asset_class TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS watchlist_sectors (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
}
