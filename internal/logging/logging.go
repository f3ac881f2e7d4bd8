// Package logging provides structured logging helpers shared by the
// preparation and computation commands.
package logging

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey struct{}

// NewStructuredLogger returns a JSON logger writing to w at the given level.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewFileWriter returns a size-rotated log file writer.
func NewFileWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// LogOperation logs a named operation at info level.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, attrs...)
}

// LogError logs err with a message and optional attributes.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs = append(attrs, slog.String("error", errorString(err)))
	logger.LogAttrs(context.Background(), slog.LevelError, message, attrs...)
}

// SafeCloseWithLogging closes c and logs a failure instead of returning it.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, resource string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close resource", err, slog.String("resource", resource))
	}
}

// SafeRollbackWithLogging rolls tx back, ignoring transactions that already finished.
func SafeRollbackWithLogging(tx *sql.Tx, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		LogError(logger, "failed to roll back transaction", err, slog.String("operation", operation))
	}
}

func errorString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
