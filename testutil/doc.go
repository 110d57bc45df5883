// Package testutil provides testing utilities for famalloc.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and helpers for generating bitmap
// occupancy patterns.
//
// # Occupancy Patterns
//
//	rng := testutil.NewRNG(seed)
//	used := rng.Occupancy(640, 0.25) // ~25% of 640 bits, sorted, distinct
//	for _, n := range used {
//	    bm.Set(n)
//	}
//
// # Clustered Patterns
//
//	runs := rng.Runs(640, 8, 16) // 8 runs of up to 16 consecutive bits
package testutil
