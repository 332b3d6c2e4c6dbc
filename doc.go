// Package hclust clusters ordered collections of sampled states by bottom-up
// hierarchical agglomeration.
//
// Items are scalar series, multi-dimensional series or coordinate frames. A
// Clusterer builds the pairwise distance matrix, merges the closest clusters
// until a target count or a distance ceiling is reached, and returns the
// final partition as plain data.
//
// # Quick Start
//
//	ds := hclust.Dataset{
//	    Series: []distance.Series{{Name: "x", Values: []float64{0, 1, 2, 10, 11}}},
//	}
//	cfg := hclust.DefaultConfig()
//	cfg.Linkage = cluster.SingleLinkage
//	cfg.Clusters = 2
//
//	res, err := hclust.New().Run(ctx, ds, cfg)
//	for _, c := range res.Clusters {
//	    fmt.Println(c.Number, c.Members, c.Representative)
//	}
//
// # Stop Criteria
//
// Clusters and Epsilon are mutually exclusive. With neither set the run stops
// at DefaultClusters clusters. With Epsilon set, merging stops as soon as the
// closest pair is farther apart than Epsilon.
//
// # Sieving
//
// With Sieve > 1 only every Sieve-th item enters the distance matrix. The
// remaining items are assigned afterwards to the cluster with the closest
// centroid.
//
// # Matrix Persistence
//
// With a matrix store configured (WithMatrixStore), Config.SaveMatrix writes
// the pairwise matrix after it is built and Config.LoadMatrix reuses a saved
// matrix instead of recomputing it.
//
// # Outputs
//
// Sinks registered with WithSinks receive the Result after every successful
// run. The report and dataset packages provide sinks for summaries,
// cluster-number series, JSON reports and trajectory exports.
package hclust
