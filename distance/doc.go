// Package distance computes dissimilarities between sampled items and the
// centroids of item groups.
//
// A Strategy is one handle over a tagged Kind:
//
//   - KindScalar: one numeric series, absolute (or periodic) difference
//   - KindMultiScalar: several equal-length series, Euclidean over the
//     per-series differences
//   - KindCoordinateFit: coordinate RMSD after best-fit superposition
//   - KindCoordinateNoFit: coordinate RMSD without superposition
//   - KindDME: RMS difference of internal distance matrices
//
// Constructors validate dimensionality, masks and masses up front, so every
// pair the strategy is later asked about can be computed.
//
// # Usage
//
//	s, err := distance.NewScalar(distance.Series{Values: values})
//	m, _ := matrix.New(len(items))
//	err = s.PairwiseDist(ctx, m, items, distance.WithWorkers(4))
//	c, err := s.NewCentroid([]int{0, 1, 2})
package distance
