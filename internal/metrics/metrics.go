// Package metrics exposes Prometheus collectors for a duplicate detection run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors updated by the comparison engine.
// All methods are safe on a nil *Metrics, which disables collection.
type Metrics struct {
	records        prometheus.Gauge
	comparisons    prometheus.Counter
	matches        prometheus.Counter
	workerDuration *prometheus.HistogramVec
	workerFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "authordedup_records",
			Help: "Number of author records in the current run",
		}),
		comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authordedup_comparisons_total",
			Help: "Total pairwise similarity computations",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authordedup_matches_total",
			Help: "Total author pairs scoring above the match threshold",
		}),
		workerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authordedup_worker_duration_seconds",
			Help:    "Wall time of a single comparison worker",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"status"}),
		workerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authordedup_worker_failures_total",
			Help: "Total comparison workers that returned an error",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.records, m.comparisons, m.matches, m.workerDuration, m.workerFailures)
	}
	return m
}

// SetRecords records the size of the record set.
func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}

// AddComparisons counts finished pairwise comparisons.
func (m *Metrics) AddComparisons(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.comparisons.Add(float64(n))
}

// AddMatches counts matched pairs.
func (m *Metrics) AddMatches(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.matches.Add(float64(n))
}

// OnWorkerDone observes a worker's runtime and outcome.
func (m *Metrics) OnWorkerDone(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		m.workerFailures.Inc()
	}
	m.workerDuration.WithLabelValues(status).Observe(d.Seconds())
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
