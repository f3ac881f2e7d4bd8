package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"authordedup.kddcup.org/authordb"
	"authordedup.kddcup.org/internal/appconf"
	"authordedup.kddcup.org/internal/logging"
	"authordedup.kddcup.org/internal/prepare"
	"authordedup.kddcup.org/internal/snapshot"
)

// Config holds the parsed prepare command line.
type Config struct {
	App         appconf.Config
	Conn        authordb.ConnParams
	Driver      string
	SourceTable string
	AuthorTable string
	Output      string
	Compression snapshot.Compression
}

// DSN returns the data source name for the configured driver. SQLite
// drivers take the database name as a file path.
func (c Config) DSN() string {
	if c.Driver == authordb.DriverPostgres {
		return c.Conn.PostgresDSN()
	}
	return c.Conn.DBName
}

// ParseArgs parses the prepare command line.
func ParseArgs(args []string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs) }

	var (
		cfg         Config
		envFlag     string
		compression string
	)

	fs.StringVar(&cfg.Output, "out", "kdd2013track2.dump", "Path of the prepared dump to write")
	fs.StringVar(&cfg.Driver, "driver", authordb.DriverPostgres, "Database driver (pgx|sqlite3|sqlite)")
	fs.IntVar(&cfg.Conn.Port, "port", authordb.DefaultPostgresPort, "PostgreSQL port")
	fs.StringVar(&cfg.Conn.SSLMode, "sslmode", "", "PostgreSQL sslmode (disable|require|verify-full)")
	fs.StringVar(&cfg.AuthorTable, "author-table", authordb.DefaultAuthorTable, "Table holding one row per author")
	fs.StringVar(&compression, "compression", snapshot.CompressionZSTD.String(), "Dump compression (zstd|lz4|none)")
	fs.StringVar(&envFlag, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&cfg.App.LogFile, "log-file", "", "Also write logs to this rotated file")
	fs.BoolVar(&cfg.App.Verbose, "verbose", false, "Log database and progress details")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 5 {
		fs.Usage()
		return nil, fmt.Errorf("expected 5 arguments, got %d", fs.NArg())
	}
	cfg.Conn.DBName = fs.Arg(0)
	cfg.Conn.User = fs.Arg(1)
	cfg.Conn.Password = fs.Arg(2)
	cfg.Conn.Host = fs.Arg(3)
	cfg.SourceTable = fs.Arg(4)

	switch cfg.Driver {
	case authordb.DriverPostgres, authordb.DriverSQLite, authordb.DriverSQLitePureGo:
	default:
		return nil, fmt.Errorf("invalid driver: %s (must be pgx, sqlite3, or sqlite)", cfg.Driver)
	}

	for _, table := range []string{cfg.AuthorTable, cfg.SourceTable} {
		if err := authordb.ValidateIdentifier(table); err != nil {
			return nil, err
		}
	}

	c, err := snapshot.ParseCompression(compression)
	if err != nil {
		return nil, err
	}
	cfg.Compression = c

	cfg.App.Env = appconf.EnvFlagToEnvironment(envFlag)
	cfg.App.LogLevel = "info"
	if cfg.App.Verbose {
		cfg.App.LogLevel = "debug"
	}

	return &cfg, nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `prepare - Build the author dump from the KDD Cup 2013 tables

Usage:
  prepare [options] <dbname> <dbuser> <dbpassword> <host> <source-table>

The source table joins paper authors with paper titles and keywords and
must expose the columns paperid, authorid, name, affiliation, title and
keyword. With a SQLite driver, <dbname> is the database file path and the
user, password and host arguments are ignored.

Options:
`)
	fs.PrintDefaults()
}

// Application is the wired prepare command.
type Application struct {
	Config Config
	Logger *slog.Logger
	Client *authordb.Client

	logFile io.Closer
}

// BuildApplication creates the logger and opens the database.
func BuildApplication(cfg Config, stdout io.Writer) (*Application, error) {
	var (
		out     io.Writer = stdout
		logFile io.WriteCloser
	)
	if cfg.App.LogFile != "" {
		logFile = logging.NewFileWriter(cfg.App.LogFile)
		out = io.MultiWriter(stdout, logFile)
	}
	logger := logging.NewStructuredLogger(out, logging.ParseLevel(cfg.App.LogLevel))

	client, err := authordb.NewClient(authordb.NewConfig(cfg.Driver, cfg.DSN(), cfg.App.Env, cfg.App.Verbose))
	if err != nil {
		logging.SafeCloseWithLogging(logFile, logger, "log file")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		logFile: logFile,
	}, nil
}

// Run builds the record set from the database and saves it.
func (a *Application) Run(ctx context.Context) (snapshot.Info, error) {
	if a.Config.App.Verbose {
		counts, err := a.Client.TableCounts(ctx, a.Config.AuthorTable, a.Config.SourceTable)
		if err != nil {
			return snapshot.Info{}, err
		}
		logging.LogOperation(a.Logger, "source_tables",
			slog.Int("authors", counts[a.Config.AuthorTable]),
			slog.Int("rows", counts[a.Config.SourceTable]))
	}

	builder := prepare.NewBuilder(a.Client.Queries, a.Config.AuthorTable, a.Config.SourceTable, a.Logger)
	set, stats, err := builder.Build(ctx)
	if err != nil {
		return snapshot.Info{}, err
	}

	start := time.Now()
	info, err := snapshot.Save(a.Config.Output, set, a.Config.Compression)
	if err != nil {
		return snapshot.Info{}, fmt.Errorf("failed to save %s: %w", a.Config.Output, err)
	}

	logging.LogOperation(a.Logger, "dump_written",
		slog.String("path", a.Config.Output),
		slog.String("snapshot_id", info.ID.String()),
		slog.String("compression", info.Compression.String()),
		slog.Int("records", set.Len()),
		slog.Int("rows", stats.Rows),
		slog.Int("skipped_rows", stats.SkippedRows),
		slog.Uint64("raw_bytes", info.RawSize),
		slog.Uint64("payload_bytes", info.PayloadSize),
		slog.Duration("duration", time.Since(start)))

	return info, nil
}

// Close releases the database and the log file.
func (a *Application) Close() {
	logging.SafeCloseWithLogging(a.Client, a.Logger, "database")
	logging.SafeCloseWithLogging(a.logFile, a.Logger, "log file")
}

// exit prints err and terminates with status 1.
func exit(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
