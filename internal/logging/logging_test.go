package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("close failed")
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogOperation(logger, "comparison_started", slog.Int("workers", 4))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "comparison_started", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(4), entry["workers"])
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogError(logger, "worker failed", errors.New("boom"), slog.Int("worker", 2))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "worker failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, float64(2), entry["worker"])
}

func TestLogError_NilError(t *testing.T) {
	var buf bytes.Buffer
	LogError(NewStructuredLogger(&buf, slog.LevelInfo), "odd", nil)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "<nil>", entry["error"])
}

func TestStructuredLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelWarn)

	LogOperation(logger, "too_chatty")
	assert.Zero(t, buf.Len())
}

func TestSafeCloseWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)
	closer := &failingCloser{}

	SafeCloseWithLogging(closer, logger, "snapshot_file")

	assert.True(t, closer.closed)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "snapshot_file", entry["resource"])
	assert.Equal(t, "close failed", entry["error"])

	assert.NotPanics(t, func() { SafeCloseWithLogging(nil, logger, "nothing") })
}

func TestSafeRollbackWithLogging_NilTx(t *testing.T) {
	assert.NotPanics(t, func() { SafeRollbackWithLogging(nil, nil, "noop") })
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compute.log")
	w := NewFileWriter(path)

	logger := NewStructuredLogger(w, slog.LevelInfo)
	LogOperation(logger, "written_to_file")
	require.NoError(t, w.Close())

	assert.FileExists(t, path)
}
