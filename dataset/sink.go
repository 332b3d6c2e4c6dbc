package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/hclust"
	"github.com/hupe1980/hclust/blobstore"
	"github.com/hupe1980/hclust/resource"
)

// TrajectorySink exports clustered coordinate frames to a blob store.
//
// With ClusterPrefix set, the frames of cluster n are written to
// "<ClusterPrefix>.c<n>". With RepresentativeName set, the representative
// frame of every cluster is written, in cluster number order, to one file.
type TrajectorySink struct {
	Store              blobstore.BlobStore
	Names              []string
	ClusterPrefix      string
	RepresentativeName string
	// Resources optionally limits upload throughput.
	Resources *resource.Controller
}

var _ hclust.Sink = (*TrajectorySink)(nil)

// Write implements hclust.Sink.
func (s *TrajectorySink) Write(ctx context.Context, ds hclust.Dataset, res *hclust.Result) error {
	coords := ds.Frames.Coords
	if len(coords) == 0 {
		return fmt.Errorf("%w: trajectory export needs coordinate data", ErrFormat)
	}

	if s.ClusterPrefix != "" {
		for _, c := range res.Clusters {
			frames := make([][]float64, len(c.Members))
			comments := make([]string, len(c.Members))
			for k, item := range c.Members {
				frames[k] = coords[item]
				comments[k] = fmt.Sprintf("cluster %d item %d", c.Number, item)
			}
			name := fmt.Sprintf("%s.c%d", s.ClusterPrefix, c.Number)
			if err := s.put(ctx, name, frames, comments); err != nil {
				return err
			}
		}
	}

	if s.RepresentativeName != "" {
		frames := make([][]float64, len(res.Clusters))
		comments := make([]string, len(res.Clusters))
		for k, c := range res.Clusters {
			frames[k] = coords[c.Representative]
			comments[k] = fmt.Sprintf("cluster %d representative item %d", c.Number, c.Representative)
		}
		if err := s.put(ctx, s.RepresentativeName, frames, comments); err != nil {
			return err
		}
	}
	return nil
}

func (s *TrajectorySink) put(ctx context.Context, name string, frames [][]float64, comments []string) error {
	names := s.Names
	if names == nil && len(frames) > 0 {
		names = make([]string, len(frames[0])/3)
		for i := range names {
			names[i] = "X"
		}
	}

	w, err := s.Store.Create(ctx, name)
	if err != nil {
		return err
	}
	var out io.Writer = resource.NewRateLimitedWriter(ctx, w, s.Resources)
	if err := WriteXYZ(out, names, frames, comments); err != nil {
		return errors.Join(fmt.Errorf("dataset: %s: %w", name, err), w.Close(), s.Store.Delete(ctx, name))
	}
	return w.Close()
}
