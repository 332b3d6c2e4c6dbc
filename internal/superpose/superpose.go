// Package superpose compares coordinate frames stored as flat x,y,z slices.
//
// Frames hold 3*natoms values. Weights, when given, hold one value per atom;
// a nil weight slice means every atom counts equally.
package superpose

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrLength is returned when a frame is not a whole number of atoms or
	// frames and weights disagree in size.
	ErrLength = errors.New("superpose: coordinate length mismatch")
	// ErrDegenerate is returned when the fit has zero total weight or the SVD fails.
	ErrDegenerate = errors.New("superpose: degenerate fit")
)

// Atoms returns the number of atoms in a flat coordinate slice.
func Atoms(x []float64) int { return len(x) / 3 }

func check(a, b, w []float64) error {
	if len(a)%3 != 0 || len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d values", ErrLength, len(a), len(b))
	}
	if w != nil && len(w) != len(a)/3 {
		return fmt.Errorf("%w: %d weights for %d atoms", ErrLength, len(w), len(a)/3)
	}
	return nil
}

func weight(w []float64, i int) float64 {
	if w == nil {
		return 1
	}
	return w[i]
}

// Center returns the weighted geometric center of x.
func Center(x, w []float64) [3]float64 {
	var c [3]float64
	var total float64
	for i := 0; i < len(x)/3; i++ {
		wi := weight(w, i)
		c[0] += wi * x[3*i]
		c[1] += wi * x[3*i+1]
		c[2] += wi * x[3*i+2]
		total += wi
	}
	if total == 0 {
		return [3]float64{}
	}
	c[0] /= total
	c[1] /= total
	c[2] /= total
	return c
}

// RMSD returns the weighted root-mean-square deviation of a and b in place,
// with no superposition.
func RMSD(a, b, w []float64) (float64, error) {
	if err := check(a, b, w); err != nil {
		return 0, err
	}
	var sum, total float64
	for i := 0; i < len(a)/3; i++ {
		wi := weight(w, i)
		dx := a[3*i] - b[3*i]
		dy := a[3*i+1] - b[3*i+1]
		dz := a[3*i+2] - b[3*i+2]
		sum += wi * (dx*dx + dy*dy + dz*dz)
		total += wi
	}
	if total == 0 {
		return 0, nil
	}
	return math.Sqrt(sum / total), nil
}

// Transform is a rigid-body motion: x' = R(x - From) + To.
type Transform struct {
	Rot  [9]float64 // row-major 3x3
	From [3]float64
	To   [3]float64
}

// Apply writes the transformed coordinates of src into dst, which may alias src.
func (t Transform) Apply(dst, src []float64) {
	r := t.Rot
	for i := 0; i < len(src)/3; i++ {
		x := src[3*i] - t.From[0]
		y := src[3*i+1] - t.From[1]
		z := src[3*i+2] - t.From[2]
		dst[3*i] = r[0]*x + r[1]*y + r[2]*z + t.To[0]
		dst[3*i+1] = r[3]*x + r[4]*y + r[5]*z + t.To[1]
		dst[3*i+2] = r[6]*x + r[7]*y + r[8]*z + t.To[2]
	}
}

// Fit computes the weighted least-squares rigid motion that maps mobile onto
// ref (Kabsch). Reflections are excluded.
func Fit(ref, mobile, w []float64) (Transform, error) {
	if err := check(ref, mobile, w); err != nil {
		return Transform{}, err
	}
	n := len(ref) / 3
	if n == 0 {
		return Transform{Rot: identity()}, nil
	}

	cr := Center(ref, w)
	cm := Center(mobile, w)

	// H = sum_i w_i (m_i - cm)(r_i - cr)^T
	var h [9]float64
	var total float64
	for i := 0; i < n; i++ {
		wi := weight(w, i)
		total += wi
		for a := 0; a < 3; a++ {
			ma := wi * (mobile[3*i+a] - cm[a])
			for b := 0; b < 3; b++ {
				h[3*a+b] += ma * (ref[3*i+b] - cr[b])
			}
		}
	}
	if total == 0 {
		return Transform{}, ErrDegenerate
	}

	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(3, 3, h[:]), mat.SVDFull) {
		return Transform{}, ErrDegenerate
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// R = V diag(1,1,d) U^T, d corrects a reflection.
	var vut mat.Dense
	vut.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vut) < 0 {
		d = -1
	}
	diag := mat.NewDiagDense(3, []float64{1, 1, d})

	var vd, rot mat.Dense
	vd.Mul(&v, diag)
	rot.Mul(&vd, u.T())

	t := Transform{From: cm, To: cr}
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			t.Rot[3*a+b] = rot.At(a, b)
		}
	}
	return t, nil
}

func identity() [9]float64 {
	return [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// FitRMSD returns the RMSD between ref and mobile after best-fit superposition.
// mobile is not modified.
func FitRMSD(ref, mobile, w []float64) (float64, error) {
	t, err := Fit(ref, mobile, w)
	if err != nil {
		return 0, err
	}
	moved := make([]float64, len(mobile))
	t.Apply(moved, mobile)
	return RMSD(ref, moved, w)
}

// Align writes mobile superposed onto ref into dst.
func Align(dst, ref, mobile, w []float64) error {
	if len(dst) != len(mobile) {
		return fmt.Errorf("%w: destination holds %d values", ErrLength, len(dst))
	}
	t, err := Fit(ref, mobile, w)
	if err != nil {
		return err
	}
	t.Apply(dst, mobile)
	return nil
}

// DME returns the distance-matrix error between a and b: the root-mean-square
// difference over all atom pairs of their internal distances.
func DME(a, b []float64) (float64, error) {
	if err := check(a, b, nil); err != nil {
		return 0, err
	}
	n := len(a) / 3
	if n < 2 {
		return 0, nil
	}
	var sum float64
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			d := dist(a, i, j) - dist(b, i, j)
			sum += d * d
		}
	}
	pairs := float64(n*(n-1)) / 2
	return math.Sqrt(sum / pairs), nil
}

func dist(x []float64, i, j int) float64 {
	dx := x[3*i] - x[3*j]
	dy := x[3*i+1] - x[3*j+1]
	dz := x[3*i+2] - x[3*j+2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
