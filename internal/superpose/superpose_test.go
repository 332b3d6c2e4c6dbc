package superpose

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomFrame(rng *rand.Rand, atoms int) []float64 {
	x := make([]float64, 3*atoms)
	for i := range x {
		x[i] = rng.Float64()*10 - 5
	}
	return x
}

// rotation about z by theta, then shift
func moved(x []float64, theta float64, shift [3]float64) []float64 {
	c, s := math.Cos(theta), math.Sin(theta)
	out := make([]float64, len(x))
	for i := 0; i < len(x)/3; i++ {
		out[3*i] = c*x[3*i] - s*x[3*i+1] + shift[0]
		out[3*i+1] = s*x[3*i] + c*x[3*i+1] + shift[1]
		out[3*i+2] = x[3*i+2] + shift[2]
	}
	return out
}

func TestRMSD(t *testing.T) {
	a := []float64{0, 0, 0, 1, 0, 0}
	b := []float64{0, 0, 1, 1, 0, 1}

	d, err := RMSD(a, b, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-12)

	d, err = RMSD(a, a, nil)
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = RMSD(a, b[:3], nil)
	assert.ErrorIs(t, err, ErrLength)
	_, err = RMSD(a, b, []float64{1})
	assert.ErrorIs(t, err, ErrLength)
}

func TestRMSD_Weighted(t *testing.T) {
	a := []float64{0, 0, 0, 0, 0, 0}
	b := []float64{1, 0, 0, 3, 0, 0}

	d, err := RMSD(a, b, []float64{3, 1})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt((3*1+1*9)/4.0), d, 1e-12)
}

func TestFitRMSD_RigidMotion(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ref := randomFrame(rng, 12)
	mob := moved(ref, 1.1, [3]float64{3, -2, 7})

	raw, err := RMSD(ref, mob, nil)
	require.NoError(t, err)
	assert.Greater(t, raw, 1.0)

	fit, err := FitRMSD(ref, mob, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, fit, 1e-9)

	masses := make([]float64, 12)
	for i := range masses {
		masses[i] = 1 + float64(i)
	}
	fit, err = FitRMSD(ref, mob, masses)
	require.NoError(t, err)
	assert.InDelta(t, 0, fit, 1e-9)
}

func TestFitRMSD_NoReflection(t *testing.T) {
	ref := []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	}
	mirror := make([]float64, len(ref))
	copy(mirror, ref)
	for i := 0; i < 4; i++ {
		mirror[3*i+2] = -mirror[3*i+2]
	}

	d, err := FitRMSD(ref, mirror, nil)
	require.NoError(t, err)
	assert.Greater(t, d, 1e-3)
}

func TestFitRMSD_NeverWorseThanRaw(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 20 {
		a := randomFrame(rng, 8)
		b := randomFrame(rng, 8)

		raw, err := RMSD(a, b, nil)
		require.NoError(t, err)
		fit, err := FitRMSD(a, b, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, fit, raw+1e-9)
	}
}

func TestAlign(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	ref := randomFrame(rng, 6)
	mob := moved(ref, -0.4, [3]float64{1, 1, 1})

	dst := make([]float64, len(mob))
	require.NoError(t, Align(dst, ref, mob, nil))
	for i := range ref {
		assert.InDelta(t, ref[i], dst[i], 1e-9)
	}

	assert.ErrorIs(t, Align(dst[:3], ref, mob, nil), ErrLength)
}

func TestDME(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	ref := randomFrame(rng, 10)

	d, err := DME(ref, moved(ref, 2.0, [3]float64{-4, 0, 9}))
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)

	// two atoms, separation 1 vs 3: one pair differing by 2
	d, err = DME([]float64{0, 0, 0, 1, 0, 0}, []float64{0, 0, 0, 3, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)

	d, err = DME([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestCenter(t *testing.T) {
	x := []float64{0, 0, 0, 2, 4, 6}
	assert.Equal(t, [3]float64{1, 2, 3}, Center(x, nil))
	assert.Equal(t, [3]float64{0.5, 1, 1.5}, Center(x, []float64{3, 1}))
	assert.Equal(t, [3]float64{}, Center(x, []float64{0, 0}))
}
