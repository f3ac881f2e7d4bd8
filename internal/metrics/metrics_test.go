package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(nil)

	m.SetRecords(42)
	m.AddComparisons(10)
	m.AddComparisons(5)
	m.AddComparisons(-1)
	m.AddMatches(3)

	assert.Equal(t, 42.0, testutil.ToFloat64(m.records))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.comparisons))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.matches))
}

func TestMetrics_OnWorkerDone(t *testing.T) {
	m := New(nil)

	m.OnWorkerDone(20*time.Millisecond, nil)
	m.OnWorkerDone(30*time.Millisecond, errors.New("boom"))
	m.OnWorkerDone(40*time.Millisecond, errors.New("boom again"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.workerFailures))
	assert.Equal(t, 2, testutil.CollectAndCount(m.workerDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SetRecords(1)
		m.AddComparisons(1)
		m.AddMatches(1)
		m.OnWorkerDone(time.Second, nil)
	})
}

func TestMetrics_RegisterAndWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SetRecords(3)
	m.AddComparisons(3)

	path := filepath.Join(t.TempDir(), "authordedup.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "authordedup_records 3")
	assert.Contains(t, string(data), "authordedup_comparisons_total 3")
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
