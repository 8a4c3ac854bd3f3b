package segbench

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with segbench-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogInitialize logs the outcome of subsystem initialization.
func (l *Logger) LogInitialize(ctx context.Context, allocator string, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "initialization failed",
			"allocator", allocator,
			"elapsed", elapsed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "initialization completed",
			"allocator", allocator,
			"elapsed", elapsed,
		)
	}
}

// LogDocument logs a document render.
func (l *Logger) LogDocument(ctx context.Context, key string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "document failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "document produced",
			"key", key,
			"bytes", size,
		)
	}
}

// LogExport logs a document export.
func (l *Logger) LogExport(ctx context.Context, key, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"key", key,
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "document exported",
			"key", key,
			"filename", filename,
		)
	}
}
