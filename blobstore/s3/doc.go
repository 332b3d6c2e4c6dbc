// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "hclust/runs")
//
// # Features
//
//   - Range reads for partial fetches of large matrices
//   - Multipart uploads for streaming writes
//   - CRC32C integrity checks on Put
//   - Automatic pagination for listing
package s3
