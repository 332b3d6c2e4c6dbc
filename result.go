package hclust

import (
	"context"
	"time"

	"github.com/hupe1980/hclust/cluster"
	"github.com/hupe1980/hclust/distance"
)

// Result is the outcome of a clustering run as plain data.
type Result struct {
	Metric  distance.Kind   `json:"-"`
	Linkage cluster.Linkage `json:"linkage"`
	// Items is the number of items in the data set.
	Items int `json:"items"`
	// Clustered lists the items that entered the distance matrix.
	Clustered []int `json:"clustered"`
	// Assignments holds the final cluster number of every item, or -1 for
	// excluded items.
	Assignments []int `json:"assignments"`
	// Clusters is ordered by cluster number.
	Clusters []ClusterInfo  `json:"clusters"`
	Merges   []cluster.Merge `json:"merges"`
	Elapsed  time.Duration   `json:"elapsed_ns"`
}

// ClusterInfo describes one final cluster.
type ClusterInfo struct {
	Number int `json:"number"`
	Size   int `json:"size"`
	// Fraction is Size over the number of assigned items.
	Fraction float64 `json:"fraction"`
	// AvgDist and StdDev describe member distances within the distance
	// matrix; items assigned by sieving are not included.
	AvgDist         float64 `json:"avg_dist"`
	StdDev          float64 `json:"stddev"`
	Representative  int     `json:"representative"`
	AvgCentroidDist float64 `json:"avg_centroid_dist"`
	Members         []int   `json:"members"`
}

// Cluster returns the cluster with the given number.
func (r *Result) Cluster(number int) (ClusterInfo, bool) {
	if number < 0 || number >= len(r.Clusters) {
		return ClusterInfo{}, false
	}
	return r.Clusters[number], true
}

// Representatives returns the representative item of every cluster in
// cluster number order.
func (r *Result) Representatives() []int {
	out := make([]int, len(r.Clusters))
	for i, c := range r.Clusters {
		out[i] = c.Representative
	}
	return out
}

// Sink consumes the result of a successful run.
type Sink interface {
	Write(ctx context.Context, ds Dataset, res *Result) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ds Dataset, res *Result) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, ds Dataset, res *Result) error {
	return f(ctx, ds, res)
}
