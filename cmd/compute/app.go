package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"authordedup.kddcup.org/internal/appconf"
	"authordedup.kddcup.org/internal/engine"
	"authordedup.kddcup.org/internal/logging"
	"authordedup.kddcup.org/internal/metrics"
	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/report"
	"authordedup.kddcup.org/internal/similarity"
	"authordedup.kddcup.org/internal/snapshot"
)

// ErrUnknownAuthor is returned when -inspect-id names an author missing from the dump.
var ErrUnknownAuthor = errors.New("author is not in the dump")

// Options holds everything the compute command was asked to do.
type Options struct {
	DumpPath   string
	ConfigPath string
	Config     *appconf.JSONConfig
	// InspectID is only meaningful when Inspect is set.
	InspectID int64
	Inspect   bool
}

// ParseArgs parses the command line. Flags given explicitly override values
// loaded from -config; the remaining values come from the file or defaults.
func ParseArgs(args []string, stderr io.Writer) (*Options, error) {
	fs := flag.NewFlagSet("compute", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs) }

	var (
		opts        Options
		output      string
		workers     int
		threshold   float64
		timeout     time.Duration
		metricsFile string
		logFile     string
		logLevel    string
		envFlag     string
	)

	fs.StringVar(&output, "out", "submission_track2.csv", "Path of the duplicate report to write")
	fs.IntVar(&workers, "workers", 0, "Number of comparison workers; 0 means one per CPU")
	fs.Float64Var(&threshold, "threshold", models.DefaultMatchThreshold, "Score a pair must exceed to be reported as duplicates")
	fs.DurationVar(&timeout, "timeout", 0, "Abort the comparison after this long (0 disables)")
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a JSON configuration file")
	fs.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when the run ends")
	fs.Int64Var(&opts.InspectID, "inspect-id", 0, "Dump the record and match scores of this author id")
	fs.StringVar(&logFile, "log-file", "", "Also write logs to this rotated file")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	fs.StringVar(&envFlag, "env", "development", "Environment (development|test|production)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("exactly one prepared dump path is required")
	}
	opts.DumpPath = fs.Arg(0)

	if opts.ConfigPath != "" {
		config, err := appconf.LoadFromFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		opts.Config = config
	} else {
		opts.Config = appconf.DefaultJSONConfig()
	}

	config := opts.Config
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			config.Output = output
		case "workers":
			config.Workers = workers
			if workers == 0 {
				config.Workers = runtime.NumCPU()
			}
		case "threshold":
			config.Threshold = threshold
		case "timeout":
			config.Timeout = timeout.String()
		case "metrics-file":
			config.MetricsFile = metricsFile
		case "log-file":
			config.LogFile = logFile
		case "log-level":
			config.LogLevel = logLevel
		case "env":
			config.Env = envFlag
		case "inspect-id":
			opts.Inspect = true
		}
	})

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &opts, nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `compute - Find duplicate authors in a prepared dump

Usage:
  compute [options] <prepared-dump-path>

Options:
`)
	fs.PrintDefaults()
}

// Application is the wired compute command.
type Application struct {
	Options  *Options
	Config   appconf.Config
	RunID    string
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Engine   *engine.Engine
	// Stdout receives the -inspect-id dump; logs go elsewhere.
	Stdout io.Writer

	logFile io.Closer
}

// BuildApplication creates the logger, metrics registry and engine for opts.
// Logs are written to logs, and to the log file when one is configured.
func BuildApplication(opts *Options, stdout, logs io.Writer) (*Application, error) {
	engineOpts, err := opts.Config.ToEngineOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}

	cfg := opts.Config.ToAppConfig()
	runID := uuid.NewString()

	var (
		out     io.Writer = logs
		logFile io.WriteCloser
	)
	if cfg.LogFile != "" {
		logFile = logging.NewFileWriter(cfg.LogFile)
		out = io.MultiWriter(logs, logFile)
	}
	logger := logging.NewStructuredLogger(out, logging.ParseLevel(cfg.LogLevel)).
		With(slog.String("run_id", runID))

	registry := prometheus.NewRegistry()
	e, err := engine.New(engineOpts, logger, metrics.New(registry))
	if err != nil {
		logging.SafeCloseWithLogging(logFile, logger, "log file")
		return nil, err
	}

	return &Application{
		Options:  opts,
		Config:   cfg,
		RunID:    runID,
		Logger:   logger,
		Registry: registry,
		Engine:   e,
		Stdout:   stdout,
		logFile:  logFile,
	}, nil
}

// Run loads the dump, compares every pair of authors and writes the report.
func (a *Application) Run(ctx context.Context) (engine.Stats, error) {
	start := time.Now()
	set, info, err := snapshot.Load(a.Options.DumpPath)
	if err != nil {
		return engine.Stats{}, fmt.Errorf("failed to load %s: %w", a.Options.DumpPath, err)
	}
	logging.LogOperation(a.Logger, "snapshot_loaded",
		slog.String("path", a.Options.DumpPath),
		slog.String("snapshot_id", info.ID.String()),
		slog.String("compression", info.Compression.String()),
		slog.Int("records", set.Len()),
		slog.Duration("duration", time.Since(start)))

	if a.Options.Inspect {
		if _, ok := set.Get(a.Options.InspectID); !ok {
			return engine.Stats{}, fmt.Errorf("%w: %d", ErrUnknownAuthor, a.Options.InspectID)
		}
	}

	matches, stats, err := a.Engine.Run(ctx, set)
	if err != nil {
		return stats, err
	}

	if err := report.WriteFile(a.Options.Config.Output, matches); err != nil {
		return stats, fmt.Errorf("failed to write report: %w", err)
	}
	logging.LogOperation(a.Logger, "report_written",
		slog.String("path", a.Options.Config.Output),
		slog.Int("authors", len(matches)))

	if path := a.Options.Config.MetricsFile; path != "" {
		if err := metrics.WriteTextfile(path, a.Registry); err != nil {
			return stats, fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if a.Options.Inspect {
		a.inspect(set, matches, a.Options.InspectID)
	}

	return stats, nil
}

// inspection is what -inspect-id dumps for one author.
type inspection struct {
	ID           int64
	PaperIDs     []uint32
	Names        models.TokenSet
	NameTokens   models.TokenSet
	Affiliations models.TokenSet
	Titles       models.TokenSet
	TitleTokens  models.TokenSet
	Keywords     models.TokenSet
	// Matches maps each duplicate to its per-field score contributions.
	Matches map[int64]map[string]float64
}

// inspect dumps the record id, which Run has checked is in set.
func (a *Application) inspect(set *models.RecordSet, matches engine.FinalMatchMap, id int64) {
	r, ok := set.Get(id)
	if !ok {
		return
	}

	scorer := similarity.NewWeightedScorer(a.Engine.Options().Weights)
	view := inspection{
		ID:           r.ID,
		PaperIDs:     r.PaperIDs.ToArray(),
		Names:        r.Names,
		NameTokens:   r.NameTokens,
		Affiliations: r.Affiliations,
		Titles:       r.Titles,
		TitleTokens:  r.TitleTokens,
		Keywords:     r.Keywords,
		Matches:      make(map[int64]map[string]float64, len(matches[id])),
	}
	for _, other := range matches[id] {
		o, ok := set.Get(other)
		if !ok {
			continue
		}
		scores := make(map[string]float64, len(models.AllFields))
		for f, s := range scorer.FieldScores(r, o) {
			scores[f.String()] = s
		}
		view.Matches[other] = scores
	}

	dumper := spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	dumper.Fdump(a.Stdout, view)
}

// Close flushes and closes the log file, if any.
func (a *Application) Close() {
	logging.SafeCloseWithLogging(a.logFile, a.Logger, "log file")
}

// exit prints err and terminates with status 1.
func exit(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
