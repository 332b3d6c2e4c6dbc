package distance

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/hclust/internal/superpose"
	"gonum.org/v1/gonum/floats"
)

// Strategy computes distances and centroids for one data set.
//
// A Strategy only reads its data, so distance and centroid queries are safe
// for concurrent use.
type Strategy struct {
	kind   Kind
	n      int
	series []Series

	frames  [][]float64
	weights []float64
}

// Frames describes a coordinate data set.
type Frames struct {
	// Coords holds one flat x,y,z slice per item.
	Coords [][]float64
	// Mask selects the atoms that take part in comparisons. Nil selects all.
	Mask []int
	// Masses holds one mass per atom of the full frame. Only used when
	// mass weighting is requested.
	Masses []float64
}

// NewScalar creates a KindScalar strategy over one series.
func NewScalar(s Series) (*Strategy, error) {
	if s.Period < 0 || math.IsNaN(s.Period) {
		return nil, fmt.Errorf("distance: invalid period %v for %q", s.Period, s.Name)
	}
	return &Strategy{kind: KindScalar, n: len(s.Values), series: []Series{s}}, nil
}

// NewMultiScalar creates a KindMultiScalar strategy. All series must have the
// same length.
func NewMultiScalar(series ...Series) (*Strategy, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}
	n := len(series[0].Values)
	for _, s := range series {
		if len(s.Values) != n {
			return nil, &ErrDimensionMismatch{Expected: n, Actual: len(s.Values), What: "series length of " + s.Name}
		}
		if s.Period < 0 || math.IsNaN(s.Period) {
			return nil, fmt.Errorf("distance: invalid period %v for %q", s.Period, s.Name)
		}
	}
	return &Strategy{kind: KindMultiScalar, n: n, series: slices.Clone(series)}, nil
}

// NewRMSD creates a coordinate RMSD strategy. fit selects best-fit
// superposition before the deviation is taken; useMass weights atoms by mass.
func NewRMSD(f Frames, fit, useMass bool) (*Strategy, error) {
	kind := KindCoordinateNoFit
	if fit {
		kind = KindCoordinateFit
	}
	return newCoordinate(kind, f, useMass)
}

// NewDME creates a KindDME strategy. DME is invariant under rigid motion and
// ignores masses.
func NewDME(f Frames) (*Strategy, error) {
	return newCoordinate(KindDME, f, false)
}

func newCoordinate(kind Kind, f Frames, useMass bool) (*Strategy, error) {
	if len(f.Coords) == 0 {
		return nil, ErrNoData
	}
	width := len(f.Coords[0])
	if width == 0 || width%3 != 0 {
		return nil, &ErrDimensionMismatch{Expected: 3 * (width/3 + 1), Actual: width, What: "frame width"}
	}
	for _, c := range f.Coords {
		if len(c) != width {
			return nil, &ErrDimensionMismatch{Expected: width, Actual: len(c), What: "frame width"}
		}
	}
	natoms := width / 3

	mask := f.Mask
	if mask != nil {
		if len(mask) == 0 {
			return nil, fmt.Errorf("%w: no atoms selected", ErrInvalidMask)
		}
		seen := make(map[int]struct{}, len(mask))
		for _, a := range mask {
			if a < 0 || a >= natoms {
				return nil, fmt.Errorf("%w: atom %d outside frame of %d atoms", ErrInvalidMask, a, natoms)
			}
			if _, dup := seen[a]; dup {
				return nil, fmt.Errorf("%w: atom %d selected twice", ErrInvalidMask, a)
			}
			seen[a] = struct{}{}
		}
	}

	s := &Strategy{kind: kind, n: len(f.Coords)}

	if useMass {
		if len(f.Masses) != natoms {
			return nil, fmt.Errorf("%w: %d masses for %d atoms", ErrInvalidMass, len(f.Masses), natoms)
		}
		for i, m := range f.Masses {
			if !(m > 0) {
				return nil, fmt.Errorf("%w: atom %d has mass %v", ErrInvalidMass, i, m)
			}
		}
		s.weights = selectAtoms(f.Masses, mask, 1)
	}

	if mask == nil {
		s.frames = f.Coords
	} else {
		s.frames = make([][]float64, len(f.Coords))
		for i, c := range f.Coords {
			s.frames[i] = selectAtoms(c, mask, 3)
		}
	}
	return s, nil
}

// selectAtoms copies the stride-wide records of the masked atoms.
func selectAtoms(src []float64, mask []int, stride int) []float64 {
	if mask == nil {
		return slices.Clone(src)
	}
	out := make([]float64, 0, stride*len(mask))
	for _, a := range mask {
		out = append(out, src[stride*a:stride*a+stride]...)
	}
	return out
}

// Kind returns the strategy's kind.
func (s *Strategy) Kind() Kind { return s.kind }

// Len returns the number of items in the data set.
func (s *Strategy) Len() int { return s.n }

// Series returns the series backing a scalar strategy.
func (s *Strategy) Series() []Series { return s.series }

// Frame returns the masked coordinates of item i for coordinate kinds.
func (s *Strategy) Frame(i int) []float64 {
	if s.frames == nil {
		return nil
	}
	return s.frames[i]
}

func (s *Strategy) checkItem(i int) error {
	if i < 0 || i >= s.n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrItemRange, i, s.n)
	}
	return nil
}

// FrameDist returns the distance between items i and j.
func (s *Strategy) FrameDist(i, j int) (float64, error) {
	if err := s.checkItem(i); err != nil {
		return 0, err
	}
	if err := s.checkItem(j); err != nil {
		return 0, err
	}
	return s.frameDist(i, j)
}

func (s *Strategy) frameDist(i, j int) (float64, error) {
	switch s.kind {
	case KindScalar:
		sr := s.series[0]
		return sr.diff()(sr.Values[i], sr.Values[j]), nil
	case KindMultiScalar:
		var sum float64
		for _, sr := range s.series {
			d := sr.diff()(sr.Values[i], sr.Values[j])
			sum += d * d
		}
		return math.Sqrt(sum), nil
	default:
		return s.coordDist(s.frames[i], s.frames[j])
	}
}

func (s *Strategy) coordDist(a, b []float64) (float64, error) {
	switch s.kind {
	case KindCoordinateFit:
		return superpose.FitRMSD(a, b, s.weights)
	case KindCoordinateNoFit:
		return superpose.RMSD(a, b, s.weights)
	case KindDME:
		return superpose.DME(a, b)
	default:
		return 0, fmt.Errorf("distance: %v is not a coordinate kind", s.kind)
	}
}

// NewCentroid returns a fresh centroid of items.
func (s *Strategy) NewCentroid(items []int) (*Centroid, error) {
	c := &Centroid{}
	if err := s.CalculateCentroid(c, items); err != nil {
		return nil, err
	}
	return c, nil
}

// CalculateCentroid overwrites c with the centroid of items, reusing its
// storage where possible.
//
// Scalar kinds take the (circular, for periodic series) mean. Coordinate
// kinds average the member frames; with best-fit enabled every frame is first
// superposed onto the first member.
func (s *Strategy) CalculateCentroid(c *Centroid, items []int) error {
	if len(items) == 0 {
		return ErrEmptyGroup
	}
	for _, it := range items {
		if err := s.checkItem(it); err != nil {
			return err
		}
	}

	c.Kind = s.kind
	switch s.kind {
	case KindScalar:
		c.Value = s.series[0].mean(items)
		c.Values, c.Coords = nil, nil
	case KindMultiScalar:
		c.Values = resize(c.Values, len(s.series))
		for d, sr := range s.series {
			c.Values[d] = sr.mean(items)
		}
		c.Value, c.Coords = 0, nil
	default:
		ref := s.frames[items[0]]
		c.Coords = resize(c.Coords, len(ref))
		copy(c.Coords, ref)

		var buf []float64
		if s.kind == KindCoordinateFit {
			buf = make([]float64, len(ref))
		}
		for _, it := range items[1:] {
			frame := s.frames[it]
			if buf != nil {
				if err := superpose.Align(buf, ref, frame, s.weights); err != nil {
					return err
				}
				frame = buf
			}
			floats.Add(c.Coords, frame)
		}
		floats.Scale(1/float64(len(items)), c.Coords)
		c.Value, c.Values = 0, nil
	}
	return nil
}

func resize(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

// CentroidDist returns the distance between two centroids.
func (s *Strategy) CentroidDist(a, b *Centroid) (float64, error) {
	if a.Kind != s.kind || b.Kind != s.kind {
		return 0, fmt.Errorf("%w: %v and %v for %v", ErrKindMismatch, a.Kind, b.Kind, s.kind)
	}
	switch s.kind {
	case KindScalar:
		return s.series[0].diff()(a.Value, b.Value), nil
	case KindMultiScalar:
		return s.vectorDist(a.Values, b.Values)
	default:
		return s.coordDist(a.Coords, b.Coords)
	}
}

// FrameCentroidDist returns the distance between item i and a centroid.
func (s *Strategy) FrameCentroidDist(i int, c *Centroid) (float64, error) {
	if err := s.checkItem(i); err != nil {
		return 0, err
	}
	if c.Kind != s.kind {
		return 0, fmt.Errorf("%w: %v for %v", ErrKindMismatch, c.Kind, s.kind)
	}
	switch s.kind {
	case KindScalar:
		sr := s.series[0]
		return sr.diff()(sr.Values[i], c.Value), nil
	case KindMultiScalar:
		v := make([]float64, len(s.series))
		for d, sr := range s.series {
			v[d] = sr.Values[i]
		}
		return s.vectorDist(v, c.Values)
	default:
		return s.coordDist(s.frames[i], c.Coords)
	}
}

func (s *Strategy) vectorDist(a, b []float64) (float64, error) {
	if len(a) != len(s.series) || len(b) != len(s.series) {
		return 0, &ErrDimensionMismatch{Expected: len(s.series), Actual: min(len(a), len(b)), What: "centroid width"}
	}
	periodic := false
	for _, sr := range s.series {
		if sr.Period > 0 {
			periodic = true
			break
		}
	}
	if !periodic {
		return floats.Distance(a, b, 2), nil
	}
	var sum float64
	for d, sr := range s.series {
		x := sr.diff()(a[d], b[d])
		sum += x * x
	}
	return math.Sqrt(sum), nil
}
