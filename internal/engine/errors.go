package engine

import (
	"errors"
	"fmt"

	"authordedup.kddcup.org/internal/partition"
)

var (
	// ErrInvalidOptions is returned when Options fail validation.
	ErrInvalidOptions = errors.New("invalid engine options")
	// ErrIntervalOutOfRange is returned when a worker gets rows outside the record set.
	ErrIntervalOutOfRange = errors.New("interval out of range")
)

// WorkerError reports a failed comparison worker.
//
// The underlying cause can be accessed via errors.Unwrap.
type WorkerError struct {
	Worker   int
	Interval partition.Interval
	Err      error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("comparison worker %d on rows %s failed: %v", e.Worker, e.Interval, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }
