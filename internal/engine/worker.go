package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"authordedup.kddcup.org/internal/logging"
	"authordedup.kddcup.org/internal/metrics"
	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/partition"
	"authordedup.kddcup.org/internal/similarity"
)

// PartialMatchMap maps an author id to the ids one worker matched it with.
// Every id of the record set is present, most with an empty list.
type PartialMatchMap map[int64][]int64

// Worker compares the rows of one interval against every later row.
// A Worker owns no shared mutable state; its only output is the map it returns.
type Worker struct {
	index            int
	scorer           similarity.DuplicateScorer
	threshold        float64
	progressInterval time.Duration
	logger           *slog.Logger
	metrics          *metrics.Metrics
}

// NewWorker creates the worker numbered index.
func NewWorker(index int, scorer similarity.DuplicateScorer, opts Options, logger *slog.Logger, m *metrics.Metrics) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		index:            index,
		scorer:           scorer,
		threshold:        opts.Threshold,
		progressInterval: opts.ProgressInterval,
		logger:           logger.With(slog.String("component", "comparison_worker"), slog.Int("worker", index)),
		metrics:          m,
	}
}

// Run scores row i against row j for every i in iv and every j > i, and
// records both directions of each pair scoring above the threshold.
//
// A panic raised while scoring is recovered and returned as a *WorkerError,
// as is cancellation of ctx, which is checked once per row.
func (w *Worker) Run(ctx context.Context, set *models.RecordSet, iv partition.Interval) (partial PartialMatchMap, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			partial = nil
			err = &WorkerError{Worker: w.index, Interval: iv, Err: fmt.Errorf("panic: %v", r)}
		}
		w.metrics.OnWorkerDone(time.Since(start), err)
	}()

	n := set.Len()
	if iv.Begin < 0 || iv.End > n {
		return nil, &WorkerError{Worker: w.index, Interval: iv, Err: ErrIntervalOutOfRange}
	}

	partial = make(PartialMatchMap, n)
	for i := 0; i < n; i++ {
		partial[set.ID(i)] = nil
	}

	logging.LogOperation(w.logger, "worker_started",
		slog.String("rows", iv.String()),
		slog.Int64("comparisons", partition.Weight(iv, n)))

	progress := rate.Sometimes{Interval: w.progressInterval}
	var comparisons, matched int64

	for i := iv.Begin; i < iv.End; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &WorkerError{Worker: w.index, Interval: iv, Err: ctxErr}
		}

		a := set.At(i)
		for j := i + 1; j < n; j++ {
			b := set.At(j)
			if w.scorer.Score(a, b) > w.threshold {
				partial[a.ID] = append(partial[a.ID], b.ID)
				partial[b.ID] = append(partial[b.ID], a.ID)
				matched++
			}
		}

		rowWork := int64(n - i - 1)
		comparisons += rowWork
		w.metrics.AddComparisons(rowWork)

		progress.Do(func() {
			logging.LogOperation(w.logger, "worker_progress",
				slog.Int("row", i),
				slog.Int64("comparisons", comparisons),
				slog.Int64("matched_pairs", matched))
		})
	}

	w.metrics.AddMatches(matched)
	logging.LogOperation(w.logger, "worker_completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int64("comparisons", comparisons),
		slog.Int64("matched_pairs", matched))

	return partial, nil
}
