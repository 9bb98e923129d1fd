package mindex

import (
	"log/slog"

	"github.com/hupe1980/mindex/internal/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	resources        resource.Config
}

// Option configures a Registry.
type Option func(*options)

// WithMetricsCollector configures a metrics collector shared by every pool
// of the registry. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &mindex.BasicMetricsCollector{}
//	reg := mindex.NewRegistry(mindex.WithMetricsCollector(metrics))
//	// ... use reg ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Rollbacks: %d\n", stats.InsertCount, stats.Rollbacks)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := mindex.NewJSONLogger(slog.LevelInfo)
//	reg := mindex.NewRegistry(mindex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemoryLimit caps the bytes slab allocators of this registry may
// reserve. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources.MemoryLimitBytes = bytes
	}
}

// WithTeardownWorkers sets how many pools Clean and Gc tear down
// concurrently. Destructors of different pools may then run in parallel.
func WithTeardownWorkers(n int) Option {
	return func(o *options) {
		o.resources.MaxTeardownWorkers = int64(n)
	}
}

// WithTeardownRate caps how many records Clean and Gc destroy per second.
func WithTeardownRate(recordsPerSec int) Option {
	return func(o *options) {
		o.resources.TeardownRecordsPerSec = int64(recordsPerSec)
	}
}

// ShortfallPolicy decides what a multi-index Insert does when an index
// rejects the record.
type ShortfallPolicy int

const (
	// Rollback unlinks the record from every index that accepted it and
	// reports an *InsertError. This is the default.
	Rollback ShortfallPolicy = iota
	// Accept keeps the record in the indexes that took it ("reduced
	// coverage") and only fails when no index accepted it.
	Accept
)

func (p ShortfallPolicy) String() string {
	switch p {
	case Rollback:
		return "rollback"
	case Accept:
		return "accept"
	default:
		return "unknown"
	}
}

type poolOptions[T any] struct {
	policy     ShortfallPolicy
	destructor func(*T)
	allocator  *Slab[T]
}

// PoolOption configures a Pool.
type PoolOption[T any] func(*poolOptions[T])

// WithShortfallPolicy selects how Insert handles a partial acceptance.
func WithShortfallPolicy[T any](p ShortfallPolicy) PoolOption[T] {
	return func(o *poolOptions[T]) {
		o.policy = p
	}
}

// WithDestructor sets the cleanup used by Flush, Iterate, Gc and Clean when
// the call does not supply its own. It replaces the default cleanup.
func WithDestructor[T any](fn func(*T)) PoolOption[T] {
	return func(o *poolOptions[T]) {
		o.destructor = fn
	}
}

// WithAllocator makes default cleanup return records to s.
func WithAllocator[T any](s *Slab[T]) PoolOption[T] {
	return func(o *poolOptions[T]) {
		o.allocator = s
	}
}
