// Package dataset reads item sources for clustering and exports clustered
// coordinates.
//
// Scalar data comes from whitespace separated column files whose optional
// first comment line names the columns. Coordinate data comes from
// multi-frame XYZ files. TrajectorySink writes the frames of every cluster,
// and the representative frame of each cluster, back out as XYZ.
package dataset
