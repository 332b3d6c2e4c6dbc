// Package report formats clustering results.
//
// It writes the per-cluster summary table, the cluster number of every item
// and a JSON document of the whole Result, either to an io.Writer or as blobs
// in a blobstore.BlobStore. BlobSink and WriterSink plug these outputs into an
// hclust.Clusterer.
package report
