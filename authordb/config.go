package authordb

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"authordedup.kddcup.org/internal/appconf"
)

// Supported database/sql driver names.
const (
	DriverPostgres     = "pgx"     // github.com/jackc/pgx/v5/stdlib
	DriverSQLite       = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverSQLitePureGo = "sqlite"  // modernc.org/sqlite
)

const (
	// DefaultAuthorTable holds one row per known author.
	DefaultAuthorTable = "author"

	// DefaultPostgresPort is used when ConnParams.Port is zero.
	DefaultPostgresPort = 5432
)

// Config holds configuration options for the Client
type Config struct {
	Driver  string              // database/sql driver name
	DSN     string              // Data source name passed to the driver
	Env     appconf.Environment // Environment name: development, test, production.
	verbose bool                // Enable verbose logging
}

func NewConfig(driver, dsn string, env appconf.Environment, verbose bool) Config {
	return Config{
		Driver:  driver,
		DSN:     dsn,
		Env:     env,
		verbose: verbose,
	}
}

// IsSQLite reports whether the config targets one of the SQLite drivers.
func (c Config) IsSQLite() bool {
	return c.Driver == DriverSQLite || c.Driver == DriverSQLitePureGo
}

// IsMemory reports whether the config targets an in-memory SQLite database.
func (c Config) IsMemory() bool {
	if !c.IsSQLite() {
		return false
	}
	return c.DSN == ":memory:" || strings.Contains(c.DSN, "mode=memory")
}

// ConnParams are the discrete connection settings accepted by the prepare command.
type ConnParams struct {
	DBName   string
	User     string
	Password string
	Host     string
	Port     int
	SSLMode  string
}

// PostgresDSN renders p as a postgres:// URL understood by pgx.
func (p ConnParams) PostgresDSN() string {
	port := p.Port
	if port == 0 {
		port = DefaultPostgresPort
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(port)),
		Path:   "/" + p.DBName,
	}
	if p.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", p.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
