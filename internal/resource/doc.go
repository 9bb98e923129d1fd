// Package resource implements the registry resource controller.
//
// The Controller governs three resource types:
//
//   - Memory: Track and limit slab segment memory (non-blocking, fail-fast)
//   - Concurrency: Limit how many pools are torn down at once
//   - Teardown rate: Pace record destruction so Clean and Gc do not starve
//     foreground work
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic
// counters for usage tracking. AcquireMemory is non-blocking and returns
// immediately with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(segmentBytes); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides what to do
//	}
//	defer rc.ReleaseMemory(segmentBytes)
//
// # Teardown Pacing
//
// A token bucket paces destruction of records during registry teardown:
//
//	rc := resource.NewController(resource.Config{
//	    MaxTeardownWorkers:    4,
//	    TeardownRecordsPerSec: 100_000,
//	})
//
//	if err := rc.AcquireTeardown(ctx, batch); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
package resource
