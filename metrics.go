package hclust

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see package promcollector).
type MetricsCollector interface {
	// RecordPairwise is called after each distance matrix build.
	// items is the number of matrix rows, err is nil if successful.
	RecordPairwise(items int, duration time.Duration, err error)

	// RecordMerge is called after each merge with the merge distance.
	RecordMerge(distance float64)

	// RecordRun is called after each clustering run.
	// clusters is the number of final clusters.
	RecordRun(clusters int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPairwise(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMerge(float64)                      {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PairwiseCount      atomic.Int64
	PairwiseErrors     atomic.Int64
	PairwiseItems      atomic.Int64
	PairwiseTotalNanos atomic.Int64
	MergeCount         atomic.Int64
	RunCount           atomic.Int64
	RunErrors          atomic.Int64
	RunTotalNanos      atomic.Int64
	LastClusters       atomic.Int64
}

// RecordPairwise implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPairwise(items int, duration time.Duration, err error) {
	b.PairwiseCount.Add(1)
	b.PairwiseItems.Add(int64(items))
	b.PairwiseTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PairwiseErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(float64) {
	b.MergeCount.Add(1)
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(clusters int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	b.LastClusters.Store(int64(clusters))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PairwiseCount:    b.PairwiseCount.Load(),
		PairwiseErrors:   b.PairwiseErrors.Load(),
		PairwiseItems:    b.PairwiseItems.Load(),
		PairwiseAvgNanos: avg(b.PairwiseTotalNanos.Load(), b.PairwiseCount.Load()),
		MergeCount:       b.MergeCount.Load(),
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunAvgNanos:      avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		LastClusters:     b.LastClusters.Load(),
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
	PairwiseCount    int64
	PairwiseErrors   int64
	PairwiseItems    int64
	PairwiseAvgNanos int64
	MergeCount       int64
	RunCount         int64
	RunErrors        int64
	RunAvgNanos      int64
	LastClusters     int64
}
