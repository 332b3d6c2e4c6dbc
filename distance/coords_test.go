package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// three atoms; frame 1 is frame 0 rotated 90 degrees about z and shifted.
func rotatedFrames() [][]float64 {
	f0 := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 2, 0,
	}
	f1 := []float64{
		5, 5, 5,
		5, 6, 5,
		3, 5, 5,
	}
	return [][]float64{f0, f1}
}

func TestRMSD_FitVersusNoFit(t *testing.T) {
	frames := rotatedFrames()

	fit, err := NewRMSD(Frames{Coords: frames}, true, false)
	require.NoError(t, err)
	assert.Equal(t, KindCoordinateFit, fit.Kind())
	d, err := fit.FrameDist(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)

	nofit, err := NewRMSD(Frames{Coords: frames}, false, false)
	require.NoError(t, err)
	d, err = nofit.FrameDist(0, 1)
	require.NoError(t, err)
	assert.Greater(t, d, 5.0)

	dme, err := NewDME(Frames{Coords: frames})
	require.NoError(t, err)
	d, err = dme.FrameDist(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestRMSD_Mask(t *testing.T) {
	frames := [][]float64{
		{0, 0, 0, 1, 0, 0, 9, 9, 9},
		{0, 0, 0, 1, 0, 0, -9, -9, -9},
	}
	s, err := NewRMSD(Frames{Coords: frames, Mask: []int{0, 1}}, false, false)
	require.NoError(t, err)
	assert.Len(t, s.Frame(0), 6)

	d, err := s.FrameDist(0, 1)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestRMSD_Mass(t *testing.T) {
	frames := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{1, 0, 0, 3, 0, 0},
	}
	s, err := NewRMSD(Frames{Coords: frames, Masses: []float64{3, 1}}, false, true)
	require.NoError(t, err)
	d, err := s.FrameDist(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(3), d, 1e-12)

	// masses are ignored unless requested
	s, err = NewRMSD(Frames{Coords: frames, Masses: []float64{3, 1}}, false, false)
	require.NoError(t, err)
	d, err = s.FrameDist(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5), d, 1e-12)
}

func TestCoordinate_Validation(t *testing.T) {
	good := [][]float64{{0, 0, 0, 1, 1, 1}, {1, 1, 1, 2, 2, 2}}

	tests := []struct {
		name    string
		frames  Frames
		useMass bool
		target  error
	}{
		{"empty mask", Frames{Coords: good, Mask: []int{}}, false, ErrInvalidMask},
		{"mask out of range", Frames{Coords: good, Mask: []int{2}}, false, ErrInvalidMask},
		{"duplicate mask", Frames{Coords: good, Mask: []int{1, 1}}, false, ErrInvalidMask},
		{"missing masses", Frames{Coords: good}, true, ErrInvalidMass},
		{"zero mass", Frames{Coords: good, Masses: []float64{1, 0}}, true, ErrInvalidMass},
		{"no frames", Frames{}, false, ErrNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRMSD(tt.frames, true, tt.useMass)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("ragged frames", func(t *testing.T) {
		_, err := NewDME(Frames{Coords: [][]float64{{0, 0, 0}, {0, 0, 0, 1, 1, 1}}})
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Expected)
		assert.Equal(t, 6, dm.Actual)
	})

	t.Run("partial atom", func(t *testing.T) {
		_, err := NewDME(Frames{Coords: [][]float64{{0, 0}}})
		var dm *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})
}

func TestCoordinate_Centroid(t *testing.T) {
	frames := rotatedFrames()

	fit, err := NewRMSD(Frames{Coords: frames}, true, false)
	require.NoError(t, err)
	c, err := fit.NewCentroid([]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, KindCoordinateFit, c.Kind)
	// frame 1 aligned onto frame 0 is frame 0, so the average is frame 0
	for i, v := range frames[0] {
		assert.InDelta(t, v, c.Coords[i], 1e-9)
	}
	d, err := fit.FrameCentroidDist(1, c)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)

	nofit, err := NewRMSD(Frames{Coords: frames}, false, false)
	require.NoError(t, err)
	c, err = nofit.NewCentroid([]int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, c.Coords[0], 1e-12)
	assert.InDelta(t, 2.5, c.Coords[2], 1e-12)

	a, err := nofit.NewCentroid([]int{0})
	require.NoError(t, err)
	b, err := nofit.NewCentroid([]int{1})
	require.NoError(t, err)
	cd, err := nofit.CentroidDist(a, b)
	require.NoError(t, err)
	fd, err := nofit.FrameDist(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, fd, cd, 1e-12)
}
