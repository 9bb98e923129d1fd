package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for slab-managed record memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxTeardownWorkers is the maximum number of pools torn down
	// concurrently by Clean and Gc. If 0, defaults to 1.
	MaxTeardownWorkers int64

	// TeardownRecordsPerSec caps how many records teardown destroys per
	// second. If 0, unlimited.
	TeardownRecordsPerSec int64
}

// Controller manages registry-wide resources (memory, teardown concurrency
// and teardown rate).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	bgSem *semaphore.Weighted

	// Teardown pacing
	limiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxTeardownWorkers <= 0 {
		cfg.MaxTeardownWorkers = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxTeardownWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.TeardownRecordsPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.TeardownRecordsPerSec), int(cfg.TeardownRecordsPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// TeardownWorkers returns the configured teardown concurrency.
func (c *Controller) TeardownWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxTeardownWorkers)
}

// AcquireTeardownWorker reserves a teardown worker slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireTeardownWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// ReleaseTeardownWorker releases a teardown worker slot.
func (c *Controller) ReleaseTeardownWorker() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// AcquireTeardown waits until the rate limit allows destroying n records.
// Requests larger than the burst are paced in burst-sized steps.
func (c *Controller) AcquireTeardown(ctx context.Context, n int) error {
	if c == nil || c.limiter == nil || n <= 0 {
		return nil
	}
	burst := c.limiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := c.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
