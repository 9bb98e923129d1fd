// Package arena provides a typed slab allocator for pool records.
//
// Records are carved out of fixed-size segments and addressed by stable
// uint32 handles, so callers can hold a handle instead of a raw pointer and
// validate it later through a generation-checked Ref.
//
// # Features
//
//   - Segment-granular allocation (no per-record heap allocation)
//   - Free list reuse of released slots
//   - Live handle tracking in a Roaring bitmap
//   - Generation tracking for safe reclamation after Reset
//   - Memory budget through an optional MemoryAcquirer
//
// # Safety
//
// All methods return errors instead of panicking. Get returns nil for
// invalid handles rather than panicking.
package arena
