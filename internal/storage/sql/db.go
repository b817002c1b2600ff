package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds database connection settings
type Config struct {
	// Driver is DriverSQLite or DriverPostgres
	Driver string

	// URL is a SQLite file path (or ":memory:") or a PostgreSQL connection URL
	URL string

	MaxOpenConns int
}

// DefaultConfig returns a file-backed SQLite configuration
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		URL:          "trackquiz.db",
		MaxOpenConns: 10,
	}
}

// Open connects to the database, verifies the connection and applies migrations
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	dsn := cfg.URL
	maxOpen := cfg.MaxOpenConns

	switch cfg.Driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "_foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_foreign_keys=on&_busy_timeout=5000"
		}
		// SQLite serialises writers; a single connection also keeps
		// ":memory:" databases alive for the pool's lifetime.
		maxOpen = 1
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
