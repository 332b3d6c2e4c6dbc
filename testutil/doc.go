// Package testutil provides testing utilities for hclust.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for scalar series and coordinate frames with
// a known group structure, and helpers for comparing partitions.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	values := rng.GroupedSeries(100, []float64{0, 10, 20}, 0.5)
//	frames := rng.GroupedFrames(100, 12, 3, 0.1) // item i belongs to group i%3
//
// # Partition Comparison
//
//	ok := testutil.SamePartition(got, want)
package testutil
