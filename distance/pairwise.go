package distance

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/hclust/matrix"
)

type pairwiseOptions struct {
	workers  int
	progress func(done, total int)
}

// PairwiseOption configures PairwiseDist.
type PairwiseOption func(*pairwiseOptions)

// WithWorkers splits the matrix rows over n goroutines. n <= 1 fills the
// matrix sequentially in element order.
func WithWorkers(n int) PairwiseOption {
	return func(o *pairwiseOptions) { o.workers = n }
}

// WithProgress registers fn to be called after each completed matrix row.
// With several workers fn is called concurrently.
func WithProgress(fn func(done, total int)) PairwiseOption {
	return func(o *pairwiseOptions) { o.progress = fn }
}

// PairwiseDist fills m with the distances between every pair of items.
// Row r of m corresponds to items[r], and m must have len(items) rows with no
// elements added yet. Any failed pair aborts the fill.
func (s *Strategy) PairwiseDist(ctx context.Context, m *matrix.Triangle, items []int, opts ...PairwiseOption) error {
	o := pairwiseOptions{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if m.Nrows() != len(items) {
		return &ErrDimensionMismatch{Expected: len(items), Actual: m.Nrows(), What: "matrix rows"}
	}
	for _, it := range items {
		if err := s.checkItem(it); err != nil {
			return err
		}
	}

	rows := max(len(items)-1, 0)
	if o.workers <= 1 {
		return s.pairwiseSequential(ctx, m, items, rows, o.progress)
	}

	var done atomic.Int64
	return m.FillRows(ctx, o.workers, func(r int, dst []float32) error {
		for k := range dst {
			d, err := s.frameDist(items[r], items[r+1+k])
			if err != nil {
				return fmt.Errorf("distance: items %d,%d: %w", items[r], items[r+1+k], err)
			}
			dst[k] = float32(d)
		}
		if o.progress != nil {
			o.progress(int(done.Add(1)), rows)
		}
		return nil
	})
}

func (s *Strategy) pairwiseSequential(ctx context.Context, m *matrix.Triangle, items []int, rows int, progress func(int, int)) error {
	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for c := r + 1; c < len(items); c++ {
			d, err := s.frameDist(items[r], items[c])
			if err != nil {
				return fmt.Errorf("distance: items %d,%d: %w", items[r], items[c], err)
			}
			if err := m.AddElement(d); err != nil {
				return err
			}
		}
		if progress != nil {
			progress(r+1, rows)
		}
	}
	return nil
}
