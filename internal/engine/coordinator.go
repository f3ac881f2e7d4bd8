package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"authordedup.kddcup.org/internal/logging"
	"authordedup.kddcup.org/internal/metrics"
	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/partition"
	"authordedup.kddcup.org/internal/similarity"
)

// Coordinator fans comparison work out to one worker per interval and
// gathers every partial result.
type Coordinator struct {
	opts    Options
	scorer  similarity.DuplicateScorer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCoordinator creates a coordinator that scores pairs with scorer.
func NewCoordinator(opts Options, scorer similarity.DuplicateScorer, logger *slog.Logger, m *metrics.Metrics) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		opts:    opts,
		scorer:  scorer,
		logger:  logger,
		metrics: m,
	}
}

// Run partitions set into opts.Workers intervals and runs a worker for each
// interval that has comparisons to do. It blocks until every worker has
// reported. The first worker error cancels the others and is returned;
// partial results are never returned alongside an error.
func (c *Coordinator) Run(ctx context.Context, set *models.RecordSet) ([]PartialMatchMap, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	n := set.Len()
	intervals := partition.Split(n, c.opts.Workers)

	// One slot per interval; each worker writes only its own.
	slots := make([]PartialMatchMap, len(intervals))
	g, gctx := errgroup.WithContext(ctx)

	dispatched := 0
	for i, iv := range intervals {
		if partition.Weight(iv, n) == 0 {
			continue
		}
		worker := NewWorker(i, c.scorer, c.opts, c.logger, c.metrics)
		dispatched++
		g.Go(func() error {
			partial, err := worker.Run(gctx, set, iv)
			if err != nil {
				return err
			}
			slots[i] = partial
			return nil
		})
	}

	logging.LogOperation(c.logger, "workers_dispatched",
		slog.Int("dispatched", dispatched),
		slog.Int("intervals", len(intervals)))

	if err := g.Wait(); err != nil {
		logging.LogError(c.logger, "comparison worker failed", err)
		return nil, err
	}

	results := make([]PartialMatchMap, 0, dispatched)
	for _, partial := range slots {
		if partial != nil {
			results = append(results, partial)
		}
	}
	return results, nil
}
