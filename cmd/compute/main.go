package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"authordedup.kddcup.org/internal/logging"
)

func main() {
	opts, err := ParseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		exit(err)
	}

	app, err := BuildApplication(opts, os.Stdout, os.Stderr)
	if err != nil {
		exit(err)
	}
	defer app.Close()

	// Interrupting the run cancels every worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := app.Run(ctx)
	if err != nil {
		logging.LogError(app.Logger, "compute failed", err)
		stop()
		app.Close()
		exit(err)
	}

	logging.LogOperation(app.Logger, "compute_completed",
		slog.Int("records", stats.Records),
		slog.Int("workers", stats.Workers),
		slog.Int64("comparisons", stats.Comparisons),
		slog.Int("matched_pairs", stats.MatchedPairs),
		slog.Int("matched_authors", stats.MatchedAuthors),
		slog.Duration("compare_duration", stats.CompareTime),
		slog.Duration("merge_duration", stats.MergeTime))
}
