// Package cluster implements bottom-up agglomerative clustering over a
// precomputed pairwise distance matrix.
//
// A List starts with one singleton cluster per non-ignored matrix row and
// merges the closest pair of live clusters until a target count is reached,
// the closest pair is farther apart than an epsilon ceiling, or one cluster
// remains. Cluster records live in an arena indexed by a stable id (the row
// of the cluster's lowest member); merged clusters keep the lower id.
//
// Inter-cluster distances are cached in a matrix indexed by cluster id and
// updated after each merge with the configured linkage, so no member pairs
// are rescanned. Centroids are computed on demand through a Metric.
package cluster
