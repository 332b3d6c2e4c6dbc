package matrix

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// Triangle stores the upper half of a symmetric matrix with a zero diagonal.
//
// A Triangle is not safe for concurrent mutation, except through FillRows which
// hands out disjoint row slices.
type Triangle struct {
	elements []float32
	nrows    int
	cursor   int
	ready    bool
	ignore   *bitset.BitSet
}

// Size returns the number of stored elements for an n-row matrix.
func Size(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// New creates a matrix with n rows.
func New(n int) (*Triangle, error) {
	m := &Triangle{}
	if err := m.Setup(n); err != nil {
		return nil, err
	}
	return m, nil
}

// Setup allocates storage for n rows and resets the element cursor.
// The row count cannot change once set.
func (m *Triangle) Setup(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	if m.ready {
		return ErrAlreadySetup
	}

	m.nrows = n
	m.elements = make([]float32, Size(n))
	m.cursor = 0
	m.ignore = bitset.New(uint(n))
	m.ready = true
	return nil
}

// Nrows returns N.
func (m *Triangle) Nrows() int { return m.nrows }

// Nelements returns N*(N-1)/2.
func (m *Triangle) Nelements() int { return len(m.elements) }

// Complete reports whether every element has been added.
func (m *Triangle) Complete() bool { return m.cursor == len(m.elements) }

// Index returns the storage offset of (i, j). Callers must ensure i != j and
// both indices are in range.
func (m *Triangle) Index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return m.rowStart(i) + (j - i - 1)
}

func (m *Triangle) rowStart(i int) int {
	return i*m.nrows - i*(i+1)/2
}

// AddElement stores the next element in fill order:
// for i in 0..N-2, for j in i+1..N-1.
func (m *Triangle) AddElement(v float64) error {
	if m.cursor >= len(m.elements) {
		return ErrMatrixFull
	}
	m.elements[m.cursor] = float32(v)
	m.cursor++
	return nil
}

func (m *Triangle) check(i, j int) error {
	if i < 0 || j < 0 || i >= m.nrows || j >= m.nrows {
		return fmt.Errorf("%w: (%d,%d) in %d rows", ErrOutOfRange, i, j, m.nrows)
	}
	if i == j {
		return fmt.Errorf("%w: (%d,%d)", ErrDiagonal, i, j)
	}
	return nil
}

// SetElement stores v at (i, j), which is the same slot as (j, i).
func (m *Triangle) SetElement(i, j int, v float64) error {
	if err := m.check(i, j); err != nil {
		return err
	}
	m.elements[m.Index(i, j)] = float32(v)
	return nil
}

// GetElement returns the value at (i, j).
func (m *Triangle) GetElement(i, j int) (float64, error) {
	if err := m.check(i, j); err != nil {
		return 0, err
	}
	return float64(m.elements[m.Index(i, j)]), nil
}

// At returns the value at (i, j) without bounds reporting.
// It panics when i == j.
func (m *Triangle) At(i, j int) float64 {
	if i == j {
		panic(fmt.Sprintf("matrix: diagonal element (%d,%d) requested", i, j))
	}
	return float64(m.elements[m.Index(i, j)])
}

// Ignore excludes row/column i from FindMin and Print.
func (m *Triangle) Ignore(i int) {
	if i < 0 || i >= m.nrows {
		return
	}
	m.ignore.Set(uint(i))
}

// Ignored reports whether row i has been excluded.
func (m *Triangle) Ignored(i int) bool {
	if i < 0 || i >= m.nrows {
		return false
	}
	return m.ignore.Test(uint(i))
}

// FindMin returns the smallest element whose row and column are both not
// ignored. Ties resolve to the first element in fill order. ok is false when
// no such element exists.
func (m *Triangle) FindMin() (v float64, row, col int, ok bool) {
	best := float32(math.MaxFloat32)
	row, col = -1, -1

	k := 0
	for i := 0; i < m.nrows-1; i++ {
		rowLen := m.nrows - i - 1
		if m.ignore.Test(uint(i)) {
			k += rowLen
			continue
		}
		for off, e := range m.elements[k : k+rowLen] {
			j := i + 1 + off
			if math.IsNaN(float64(e)) || m.ignore.Test(uint(j)) {
				continue
			}
			if !ok || e < best {
				best, row, col, ok = e, i, j, true
			}
		}
		k += rowLen
	}

	if !ok {
		return 0, -1, -1, false
	}
	return float64(best), row, col, true
}

// FillRows populates every row concurrently. fn receives the row index and
// the storage for (row, row+1) .. (row, N-1). Rows are disjoint, so fn may
// write dst without synchronisation. On success the matrix is complete.
func (m *Triangle) FillRows(ctx context.Context, workers int, fn func(row int, dst []float32) error) error {
	if m.cursor != 0 {
		return ErrFillStarted
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < m.nrows-1; i++ {
		if gctx.Err() != nil {
			break
		}
		start := m.rowStart(i)
		dst := m.elements[start : start+m.nrows-i-1]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i, dst)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.cursor = len(m.elements)
	return nil
}

// Clone returns a deep copy, including ignore flags and fill state.
func (m *Triangle) Clone() *Triangle {
	c := &Triangle{
		elements: make([]float32, len(m.elements)),
		nrows:    m.nrows,
		cursor:   m.cursor,
		ready:    m.ready,
		ignore:   bitset.New(uint(m.nrows)),
	}
	copy(c.elements, m.elements)
	if m.ignore != nil {
		c.ignore = m.ignore.Clone()
	}
	return c
}

// Print writes "i j value" lines for every element not in an ignored row or column.
func (m *Triangle) Print(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < m.nrows-1; i++ {
		if m.ignore.Test(uint(i)) {
			continue
		}
		for j := i + 1; j < m.nrows; j++ {
			if m.ignore.Test(uint(j)) {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%8d %8d %12.4f\n", i, j, m.At(i, j)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
