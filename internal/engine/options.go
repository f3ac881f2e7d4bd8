package engine

import (
	"fmt"
	"runtime"
	"time"

	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/similarity"
)

// Options configures a comparison run
type Options struct {
	// Workers is the number of parallel comparison workers
	Workers int
	// Threshold is the score a pair must strictly exceed to count as a match (0.0-1.0)
	Threshold float64
	// Weights are the per-field contributions to the similarity score
	Weights similarity.Weights
	// Timeout bounds the whole comparison phase; zero means no limit
	Timeout time.Duration
	// ProgressInterval is the minimum time between worker progress logs
	ProgressInterval time.Duration
}

// DefaultOptions returns one worker per CPU and the tuned threshold and weights
func DefaultOptions() Options {
	return Options{
		Workers:          runtime.NumCPU(),
		Threshold:        models.DefaultMatchThreshold,
		Weights:          similarity.DefaultWeights(),
		ProgressInterval: 30 * time.Second,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidOptions, o.Workers)
	}
	if o.Threshold < 0 || o.Threshold >= 1 {
		return fmt.Errorf("%w: threshold must be in [0, 1), got %v", ErrInvalidOptions, o.Threshold)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidOptions)
	}
	if err := o.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}
