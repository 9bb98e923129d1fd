package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	err := c.AcquireMemory(50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	err = c.AcquireMemory(40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should fail - limit exceeded)
	err = c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	err = c.AcquireMemory(20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_TeardownWorkers(t *testing.T) {
	c := NewController(Config{MaxTeardownWorkers: 2})
	assert.Equal(t, 2, c.TeardownWorkers())

	// Acquire 2
	require.NoError(t, c.AcquireTeardownWorker(t.Context()))
	require.NoError(t, c.AcquireTeardownWorker(t.Context()))

	// A 3rd waits until the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireTeardownWorker(ctx))

	// Release 1
	c.ReleaseTeardownWorker()

	// 3rd again
	assert.NoError(t, c.AcquireTeardownWorker(t.Context()))
}

func TestController_TeardownRate(t *testing.T) {
	c := NewController(Config{TeardownRecordsPerSec: 10})

	// The bucket starts full.
	require.NoError(t, c.AcquireTeardown(t.Context(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.AcquireTeardown(ctx, 5)
	assert.Error(t, err)
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Zero(t, c.MemoryUsage())
	assert.Equal(t, 1, c.TeardownWorkers())
	require.NoError(t, c.AcquireTeardownWorker(context.Background()))
	c.ReleaseTeardownWorker()
	require.NoError(t, c.AcquireTeardown(context.Background(), 1000))
}
