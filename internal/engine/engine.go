// Package engine finds all author pairs whose weighted similarity exceeds a
// threshold, splitting the O(n²) comparison across parallel workers.
//
// A run has three phases: the upper triangle of the comparison matrix is
// split into balanced row intervals, one worker per interval builds a partial
// match map, and the partial maps are merged into a FinalMatchMap.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"authordedup.kddcup.org/internal/logging"
	"authordedup.kddcup.org/internal/metrics"
	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/partition"
	"authordedup.kddcup.org/internal/similarity"
)

// Stats summarises a finished run.
type Stats struct {
	Records        int
	Workers        int
	Comparisons    int64
	MatchedPairs   int
	MatchedAuthors int
	CompareTime    time.Duration
	MergeTime      time.Duration
}

// Engine runs the parallel all-pairs comparison.
type Engine struct {
	opts    Options
	scorer  similarity.DuplicateScorer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New validates opts and creates an Engine scoring with opts.Weights.
// logger and m may be nil.
func New(opts Options, logger *slog.Logger, m *metrics.Metrics) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		opts:    opts,
		scorer:  similarity.NewWeightedScorer(opts.Weights),
		logger:  logger.With(slog.String("component", "engine")),
		metrics: m,
	}, nil
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Run compares every pair of records in set and returns each author's matches.
// Zero or one record yields a map without matches and no error.
func (e *Engine) Run(ctx context.Context, set *models.RecordSet) (FinalMatchMap, Stats, error) {
	n := set.Len()
	stats := Stats{Records: n, Comparisons: partition.TotalWork(n)}
	e.metrics.SetRecords(n)

	logging.LogOperation(e.logger, "comparison_started",
		slog.Int("records", n),
		slog.Int("workers", e.opts.Workers),
		slog.Float64("threshold", e.opts.Threshold),
		slog.Int64("comparisons", stats.Comparisons))

	start := time.Now()
	coordinator := NewCoordinator(e.opts, e.scorer, e.logger, e.metrics)
	partials, err := coordinator.Run(ctx, set)
	if err != nil {
		return nil, stats, fmt.Errorf("comparing authors: %w", err)
	}
	stats.CompareTime = time.Since(start)
	stats.Workers = len(partials)

	start = time.Now()
	final := Merge(set.IDs(), partials)
	stats.MergeTime = time.Since(start)
	stats.MatchedPairs = final.Pairs()
	stats.MatchedAuthors = final.MatchedAuthors()

	logging.LogOperation(e.logger, "comparison_completed",
		slog.Duration("compare_time", stats.CompareTime),
		slog.Duration("merge_time", stats.MergeTime),
		slog.Int("workers", stats.Workers),
		slog.Int("matched_pairs", stats.MatchedPairs),
		slog.Int("matched_authors", stats.MatchedAuthors))

	return final, stats, nil
}
