package minio

import (
	"context"
	"os"
	"testing"

	"github.com/hupe1980/hclust/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Keys(t *testing.T) {
	tests := []struct {
		prefix, name, key string
	}{
		{"hclust/", "matrix.hctm", "hclust/matrix.hctm"},
		{"hclust", "run/summary.txt", "hclust/run/summary.txt"},
		{"", "a", "a"},
	}
	for _, tt := range tests {
		s := NewStore(nil, "b", tt.prefix)
		assert.Equal(t, tt.key, s.key(tt.name))
		assert.Equal(t, tt.name, s.relative(tt.key))
	}
}

func TestStore_Options(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"run/report.json", "application/json"},
		{"run/summary.dat", "text/plain; charset=utf-8"},
		{"reps.xyz", "text/plain; charset=utf-8"},
		{"pairdist.hctm", "application/octet-stream"},
	}
	s := NewStore(nil, "b", "", WithPartSize(64<<20))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := s.putOptions(tt.name)
			assert.Equal(t, tt.contentType, opts.ContentType)
			assert.Equal(t, uint64(64<<20), opts.PartSize)
		})
	}
}

// TestStore_Integration requires a running MinIO instance at
// HCLUST_MINIO_ENDPOINT (e.g. localhost:9000).
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("HCLUST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("HCLUST_MINIO_ENDPOINT not set")
	}
	bucket := "test-hclust"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf[:n]))
	require.NoError(t, blob.Close())

	w, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := blobstore.ReadAll(ctx, store, "stream.txt")
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")
	assert.Contains(t, names, "stream.txt")

	require.NoError(t, store.Delete(ctx, "test.txt"))
	require.NoError(t, store.Delete(ctx, "stream.txt"))
	_, err = store.Open(ctx, "test.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
