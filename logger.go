package mindex

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Logger wraps slog.Logger with mindex-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
	sampler *rate.Limiter // nil means warnings are never sampled
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSampling limits hot-path warnings (insert rollbacks) to perSecond
// entries with the given burst. Errors and lifecycle events are never
// sampled.
func (l *Logger) WithSampling(perSecond float64, burst int) *Logger {
	return &Logger{
		Logger:  l.Logger,
		sampler: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (l *Logger) sampled() bool {
	return l.sampler == nil || l.sampler.AllowN(time.Now(), 1)
}

// LogRegister logs a pool or index registration.
func (l *Logger) LogRegister(ctx context.Context, pool string, index int, kind string, err error) {
	if err != nil {
		l.WarnContext(ctx, "register failed",
			"pool", pool,
			"index", index,
			"kind", kind,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "registered",
			"pool", pool,
			"index", index,
			"kind", kind,
		)
	}
}

// LogInsert logs a multi-index insert.
func (l *Logger) LogInsert(ctx context.Context, pool string, accepted, indexes int, err error) {
	if err != nil {
		if l.sampled() {
			l.WarnContext(ctx, "insert rejected",
				"pool", pool,
				"accepted", accepted,
				"indexes", indexes,
				"error", err,
			)
		}
	} else {
		l.DebugContext(ctx, "insert completed",
			"pool", pool,
			"accepted", accepted,
		)
	}
}

// LogRollback logs the undo of a partial multi-index insert.
func (l *Logger) LogRollback(ctx context.Context, pool string, failedIndex, undone int) {
	if l.sampled() {
		l.WarnContext(ctx, "insert rolled back",
			"pool", pool,
			"failed_index", failedIndex,
			"undone", undone,
		)
	}
}

// LogDelete logs a delete.
func (l *Logger) LogDelete(ctx context.Context, pool string, index int, found bool) {
	l.DebugContext(ctx, "delete completed",
		"pool", pool,
		"index", index,
		"found", found,
	)
}

// LogFree logs a record the allocator refused to take back.
func (l *Logger) LogFree(ctx context.Context, pool string, id uint64, err error) {
	l.WarnContext(ctx, "free failed",
		"pool", pool,
		"record", id,
		"error", err,
	)
}

// LogFlush logs a pool flush.
func (l *Logger) LogFlush(ctx context.Context, pool string, destroyed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"pool", pool,
			"destroyed", destroyed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "pool flushed",
			"pool", pool,
			"destroyed", destroyed,
		)
	}
}

// LogDrop logs a pool drop.
func (l *Logger) LogDrop(ctx context.Context, pool string, err error) {
	if err != nil {
		l.WarnContext(ctx, "drop failed",
			"pool", pool,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "pool dropped",
			"pool", pool,
		)
	}
}

// LogGc logs a garbage collection or clean sweep.
func (l *Logger) LogGc(ctx context.Context, gcOnly bool, pools, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sweep failed",
			"gc_only", gcOnly,
			"pools", pools,
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "sweep completed",
			"gc_only", gcOnly,
			"pools", pools,
			"records", records,
		)
	}
}
