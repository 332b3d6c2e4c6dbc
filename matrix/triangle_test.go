package matrix

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(t *testing.T, n int, f func(i, j int) float64) *Triangle {
	t.Helper()
	m, err := New(n)
	require.NoError(t, err)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			require.NoError(t, m.AddElement(f(i, j)))
		}
	}
	require.True(t, m.Complete())
	return m
}

func TestTriangle_Nelements(t *testing.T) {
	for n := 0; n <= 50; n++ {
		m, err := New(n)
		require.NoError(t, err)
		assert.Equal(t, n, m.Nrows())
		if n < 2 {
			assert.Equal(t, 0, m.Nelements())
		} else {
			assert.Equal(t, n*(n-1)/2, m.Nelements())
		}
	}
}

func TestTriangle_IndexBijective(t *testing.T) {
	for _, n := range []int{2, 3, 7, 31} {
		m, err := New(n)
		require.NoError(t, err)

		seen := make(map[int]bool)
		expected := 0
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				idx := m.Index(i, j)
				assert.Equal(t, expected, idx, "fill order for (%d,%d)", i, j)
				assert.Equal(t, idx, m.Index(j, i))
				assert.False(t, seen[idx])
				seen[idx] = true
				expected++
			}
		}
		assert.Len(t, seen, m.Nelements())
	}
}

func TestTriangle_Symmetric(t *testing.T) {
	m := filled(t, 6, func(i, j int) float64 { return float64(10*i + j) })

	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if i == j {
				continue
			}
			a, err := m.GetElement(i, j)
			require.NoError(t, err)
			b, err := m.GetElement(j, i)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		}
	}

	require.NoError(t, m.SetElement(4, 1, 99))
	v, err := m.GetElement(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 99.0, v)
}

func TestTriangle_Errors(t *testing.T) {
	_, err := New(-1)
	assert.ErrorIs(t, err, ErrNegativeSize)

	m, err := New(3)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Setup(4), ErrAlreadySetup)

	_, err = m.GetElement(1, 1)
	assert.ErrorIs(t, err, ErrDiagonal)
	assert.ErrorIs(t, m.SetElement(0, 3, 1), ErrOutOfRange)
	_, err = m.GetElement(-1, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Panics(t, func() { m.At(2, 2) })

	for range 3 {
		require.NoError(t, m.AddElement(1))
	}
	assert.ErrorIs(t, m.AddElement(1), ErrMatrixFull)
}

func TestTriangle_FindMin(t *testing.T) {
	// 0 1 2 10 11 on a line
	vals := []float64{0, 1, 2, 10, 11}
	m := filled(t, len(vals), func(i, j int) float64 { return vals[j] - vals[i] })

	v, i, j, ok := m.FindMin()
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	// (0,1), (1,2) and (3,4) tie at 1; first in fill order wins
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, j)

	m.Ignore(0)
	assert.True(t, m.Ignored(0))
	v, i, j, ok = m.FindMin()
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, j)

	m.Ignore(1)
	m.Ignore(2)
	m.Ignore(3)
	_, _, _, ok = m.FindMin()
	assert.False(t, ok)
}

func TestTriangle_FindMinEmpty(t *testing.T) {
	m, err := New(1)
	require.NoError(t, err)
	_, _, _, ok := m.FindMin()
	assert.False(t, ok)
}

func TestTriangle_FillRows(t *testing.T) {
	const n = 40
	want := filled(t, n, func(i, j int) float64 { return float64(i*n + j) })

	got, err := New(n)
	require.NoError(t, err)
	err = got.FillRows(context.Background(), 4, func(row int, dst []float32) error {
		for k := range dst {
			dst[k] = float32(row*n + row + 1 + k)
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, got.Complete())
	assert.Equal(t, want.elements, got.elements)
}

func TestTriangle_FillRowsError(t *testing.T) {
	m, err := New(10)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.FillRows(context.Background(), 2, func(row int, _ []float32) error {
		if row == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, m.Complete())

	seq, err := New(3)
	require.NoError(t, err)
	require.NoError(t, seq.AddElement(1))
	assert.ErrorIs(t, seq.FillRows(context.Background(), 1, nil), ErrFillStarted)
}

func TestTriangle_FillRowsCanceled(t *testing.T) {
	m, err := New(10)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = m.FillRows(ctx, 2, func(int, []float32) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTriangle_Clone(t *testing.T) {
	m := filled(t, 4, func(i, j int) float64 { return float64(i + j) })
	m.Ignore(2)

	c := m.Clone()
	require.NoError(t, c.SetElement(0, 1, 42))
	c.Ignore(3)

	v, err := m.GetElement(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	assert.True(t, c.Ignored(2))
	assert.False(t, m.Ignored(3))
}

func TestTriangle_Print(t *testing.T) {
	m := filled(t, 3, func(i, j int) float64 { return float64(i + j) })
	m.Ignore(1)

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"0", "2", "2.0000"}, strings.Fields(lines[0]))
}
