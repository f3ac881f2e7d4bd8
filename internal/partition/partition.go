// Package partition splits the upper triangle of an n×n comparison matrix
// into row intervals that carry roughly equal numbers of comparisons.
package partition

import (
	"fmt"
	"slices"
)

// Interval is a half-open range [Begin, End) of row indices.
type Interval struct {
	Begin int
	End   int
}

// Len returns the number of rows in the interval.
func (iv Interval) Len() int {
	if iv.End <= iv.Begin {
		return 0
	}
	return iv.End - iv.Begin
}

// IsEmpty reports whether the interval contains no rows.
func (iv Interval) IsEmpty() bool {
	return iv.Len() == 0
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Begin, iv.End)
}

// TotalWork returns the number of unordered pairs among n rows.
func TotalWork(n int) int64 {
	if n < 2 {
		return 0
	}
	return int64(n) * int64(n-1) / 2
}

// Weight returns the comparisons performed for iv when every row i is
// compared with rows i+1..n-1.
func Weight(iv Interval, n int) int64 {
	if iv.IsEmpty() {
		return 0
	}
	// Σ (n-1-i) for i in [Begin, End) is an arithmetic series.
	first := int64(n - 1 - iv.Begin)
	last := int64(n - iv.End)
	return (first + last) * int64(iv.Len()) / 2
}

// Split divides rows [0, n) into exactly workers contiguous intervals whose
// triangular weights are close to TotalWork(n)/workers.
//
// Intervals are grown from the high end downward: rows near n carry little
// work, so those intervals span more rows. Each interval is sealed as soon as
// its weight reaches the equal share; the lowest interval takes whatever is
// left. Some intervals are empty when workers exceeds the useful row count.
// The result is sorted by Begin, then End.
func Split(n, workers int) []Interval {
	if n < 0 {
		n = 0
	}
	if workers < 1 {
		workers = 1
	}

	total := TotalWork(n)
	share := int64(workers)
	intervals := make([]Interval, 0, workers)

	boundary := n
	for w := 0; w < workers-1; w++ {
		begin := boundary
		var acc int64
		// acc < total/workers, kept in integers
		for begin > 0 && acc*share < total {
			begin--
			acc += int64(n - begin - 1)
		}
		intervals = append(intervals, Interval{Begin: begin, End: boundary})
		boundary = begin
	}
	intervals = append(intervals, Interval{Begin: 0, End: boundary})

	slices.SortFunc(intervals, func(a, b Interval) int {
		if a.Begin != b.Begin {
			return a.Begin - b.Begin
		}
		return a.End - b.End
	})
	return intervals
}
