package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformSeries(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformSeries(64, -1, 1)

	require.Len(t, v, 64)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, -1.0)
		assert.Less(t, x, 1.0)
	}
}

func TestGroupedSeries(t *testing.T) {
	rng := NewRNG(4711)
	centers := []float64{0, 100}

	v := rng.GroupedSeries(20, centers, 0.1)

	require.Len(t, v, 20)
	for i, x := range v {
		assert.InDelta(t, centers[i%2], x, 1.0)
	}
}

func TestRotation_IsOrthonormal(t *testing.T) {
	rng := NewRNG(4711)

	for range 10 {
		r := rng.Rotation()
		for i := range 3 {
			for j := range 3 {
				var dot float64
				for k := range 3 {
					dot += r[3*i+k] * r[3*j+k]
				}
				want := 0.0
				if i == j {
					want = 1
				}
				assert.InDelta(t, want, dot, 1e-9)
			}
		}
		det := r[0]*(r[4]*r[8]-r[5]*r[7]) - r[1]*(r[3]*r[8]-r[5]*r[6]) + r[2]*(r[3]*r[7]-r[4]*r[6])
		assert.InDelta(t, 1.0, det, 1e-9)
	}
}

func TestMove_PreservesInternalDistances(t *testing.T) {
	rng := NewRNG(4711)
	f := rng.Structure(4, 3)

	g := Move(f, rng.Rotation(), [3]float64{1, 2, 3})

	dist := func(x []float64, a, b int) float64 {
		dx, dy, dz := x[3*a]-x[3*b], x[3*a+1]-x[3*b+1], x[3*a+2]-x[3*b+2]
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	for a := range 4 {
		for b := a + 1; b < 4; b++ {
			assert.InDelta(t, dist(f, a, b), dist(g, a, b), 1e-9)
		}
	}
}

func TestGroupedFrames(t *testing.T) {
	rng := NewRNG(4711)

	frames := rng.GroupedFrames(9, 5, 3, 0.01)

	require.Len(t, frames, 9)
	for _, f := range frames {
		assert.Len(t, f, 15)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformSeries(10, 0, 1)

	rng.Reset()
	v2 := rng.UniformSeries(10, 0, 1)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestSamePartition(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want bool
	}{
		{"identical", []int{0, 0, 1}, []int{0, 0, 1}, true},
		{"relabelled", []int{0, 0, 1}, []int{1, 1, 0}, true},
		{"split", []int{0, 0, 1}, []int{0, 1, 1}, false},
		{"merged", []int{0, 1, 2}, []int{0, 0, 2}, false},
		{"excluded", []int{0, -1, 1}, []int{1, -1, 0}, true},
		{"excluded mismatch", []int{0, -1, 1}, []int{1, 0, 0}, false},
		{"length", []int{0}, []int{0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SamePartition(tt.a, tt.b))
		})
	}
}
