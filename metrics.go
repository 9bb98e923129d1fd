package mindex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter   prometheus.Counter
//	    lookupHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(accepted int, duration time.Duration, err error) {
//	    p.insertCounter.Inc()
//	}
type MetricsCollector interface {
	// RecordInsert is called after each multi-index insert.
	// accepted is the number of indexes that took the record.
	RecordInsert(accepted int, duration time.Duration, err error)

	// RecordRollback is called when a partial insert is undone.
	RecordRollback(undone int)

	// RecordLookup is called after Get, GetConst, GetNeighbor and
	// GetNeighborConst. found reports an exact match.
	RecordLookup(found bool, duration time.Duration)

	// RecordDelete is called after each delete.
	RecordDelete(found bool, duration time.Duration)

	// RecordIterate is called when an iteration finishes.
	RecordIterate(visited, deleted int, duration time.Duration)

	// RecordFlush is called after a pool is flushed.
	RecordFlush(destroyed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRollback(int)                     {}
func (NoopMetricsCollector) RecordLookup(bool, time.Duration)       {}
func (NoopMetricsCollector) RecordDelete(bool, time.Duration)       {}
func (NoopMetricsCollector) RecordIterate(int, int, time.Duration)  {}
func (NoopMetricsCollector) RecordFlush(int, time.Duration)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	Rollbacks        atomic.Int64
	LookupCount      atomic.Int64
	LookupMisses     atomic.Int64
	LookupTotalNanos atomic.Int64
	DeleteCount      atomic.Int64
	DeleteMisses     atomic.Int64
	IterateCount     atomic.Int64
	IterateVisited   atomic.Int64
	IterateDeleted   atomic.Int64
	FlushCount       atomic.Int64
	FlushDestroyed   atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(accepted int, duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordRollback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRollback(undone int) {
	b.Rollbacks.Add(1)
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(found bool, duration time.Duration) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if !found {
		b.LookupMisses.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(found bool, duration time.Duration) {
	b.DeleteCount.Add(1)
	if !found {
		b.DeleteMisses.Add(1)
	}
}

// RecordIterate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIterate(visited, deleted int, duration time.Duration) {
	b.IterateCount.Add(1)
	b.IterateVisited.Add(int64(visited))
	b.IterateDeleted.Add(int64(deleted))
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(destroyed int, duration time.Duration) {
	b.FlushCount.Add(1)
	b.FlushDestroyed.Add(int64(destroyed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		Rollbacks:      b.Rollbacks.Load(),
		LookupCount:    b.LookupCount.Load(),
		LookupMisses:   b.LookupMisses.Load(),
		LookupAvgNanos: avg(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteMisses:   b.DeleteMisses.Load(),
		IterateCount:   b.IterateCount.Load(),
		IterateVisited: b.IterateVisited.Load(),
		IterateDeleted: b.IterateDeleted.Load(),
		FlushCount:     b.FlushCount.Load(),
		FlushDestroyed: b.FlushDestroyed.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount    int64
	InsertErrors   int64
	InsertAvgNanos int64
	Rollbacks      int64
	LookupCount    int64
	LookupMisses   int64
	LookupAvgNanos int64
	DeleteCount    int64
	DeleteMisses   int64
	IterateCount   int64
	IterateVisited int64
	IterateDeleted int64
	FlushCount     int64
	FlushDestroyed int64
}
