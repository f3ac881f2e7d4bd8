// Package authordb reads the author and paper-author tables the preparation
// stage builds records from. PostgreSQL is reached through pgx; SQLite
// databases through either mattn/go-sqlite3 or the pure Go modernc driver.
package authordb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // CGo-based SQLite driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver

	"authordedup.kddcup.org/internal/appconf"
	"authordedup.kddcup.org/internal/logging"
)

const pingTimeout = 10 * time.Second

// ErrUnsupportedDriver is returned for a driver name outside the supported set.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Client wraps the database connection and its queries.
type Client struct {
	config  Config
	DB      *sql.DB
	Queries *Queries
	logger  *slog.Logger
}

// NewClient opens and pings the database described by config.
func NewClient(config Config) (*Client, error) {
	switch config.Driver {
	case DriverPostgres, DriverSQLite, DriverSQLitePureGo:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, config.Driver)
	}

	if config.Env == appconf.Test && !config.IsMemory() {
		return nil, errors.New("test database must use in-memory storage, please use \":memory:\" as the DSN")
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configureConnectionPool(db, config)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if config.IsSQLite() {
		if err := applySQLitePragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger := slog.Default().With(slog.String("component", "authordb"))
	if config.verbose {
		logging.LogOperation(logger, "database_connected",
			slog.String("driver", config.Driver),
			slog.String("env", config.Env.String()))
	}

	return &Client{
		config:  config,
		DB:      db,
		Queries: NewForDriver(db, config.Driver),
		logger:  logger,
	}, nil
}

// configureConnectionPool sizes the pool for the target database.
// An in-memory SQLite database lives in a single connection, so it gets exactly one.
func configureConnectionPool(db *sql.DB, config Config) {
	if config.IsMemory() {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func applySQLitePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA cache_size = -64000", // 64MB
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

// Close releases the database connection.
func (c *Client) Close() error {
	return c.DB.Close()
}

// Config returns the configuration the client was opened with.
func (c *Client) Config() Config {
	return c.config
}
