package hclust

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with clustering-specific helpers.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRun adds a run identifier to the logger.
func (l *Logger) WithRun(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", id),
	}
}

// LogPairwise logs the end of a distance matrix build.
func (l *Logger) LogPairwise(ctx context.Context, items int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pairwise distances failed",
			"items", items,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "pairwise distances computed",
		"items", items,
		"elements", items*(items-1)/2,
		"elapsed", elapsed,
	)
}

// LogProgress logs matrix build progress.
func (l *Logger) LogProgress(ctx context.Context, done, total int) {
	l.InfoContext(ctx, "pairwise progress",
		"rows", done,
		"total", total,
	)
}

// LogMatrix logs a matrix load or save.
func (l *Logger) LogMatrix(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "matrix "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "matrix "+op,
		"name", name,
	)
}

// LogMerge logs one merge step.
func (l *Logger) LogMerge(ctx context.Context, kept, retired int, dist float64, size int) {
	l.DebugContext(ctx, "merged clusters",
		"kept", kept,
		"retired", retired,
		"distance", dist,
		"size", size,
	)
}

// LogRun logs the outcome of a clustering run.
func (l *Logger) LogRun(ctx context.Context, clusters, merges int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed",
			"merges", merges,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "clustering completed",
		"clusters", clusters,
		"merges", merges,
		"elapsed", elapsed,
	)
}
