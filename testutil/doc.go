// Package testutil provides testing utilities for mindex.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic, goroutine-safe random source for building
// insert and delete workloads.
//
// # Workloads
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.UniqueInts(1000, 1_000_000) // distinct keys
//	rng.Shuffle(keys)                       // random delete order
//	names := rng.Strings(100, 8)            // random fixed-length ids
package testutil
