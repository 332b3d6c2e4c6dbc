package distance

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects the item representation and metric.
type Kind int

const (
	KindScalar Kind = iota
	KindMultiScalar
	KindCoordinateFit
	KindCoordinateNoFit
	KindDME
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMultiScalar:
		return "multiscalar"
	case KindCoordinateFit:
		return "rms"
	case KindCoordinateNoFit:
		return "rms-nofit"
	case KindDME:
		return "dme"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Coordinate reports whether the kind works on coordinate frames.
func (k Kind) Coordinate() bool {
	return k == KindCoordinateFit || k == KindCoordinateNoFit || k == KindDME
}

// ParseKind returns the Kind for a name as printed by String.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "scalar", "data":
		return KindScalar, nil
	case "multiscalar", "multi", "euclid":
		return KindMultiScalar, nil
	case "rms", "rmsd":
		return KindCoordinateFit, nil
	case "rms-nofit", "nofit":
		return KindCoordinateNoFit, nil
	case "dme":
		return KindDME, nil
	default:
		return 0, fmt.Errorf("distance: unknown metric %q", name)
	}
}

// Centroid summarises a group of items. Which field is meaningful depends on
// Kind: Value for KindScalar, Values for KindMultiScalar and Coords (flat
// x,y,z of the masked atoms) for coordinate kinds.
type Centroid struct {
	Kind   Kind
	Value  float64
	Values []float64
	Coords []float64
}

// Clone returns a deep copy of c.
func (c *Centroid) Clone() *Centroid {
	out := &Centroid{Kind: c.Kind, Value: c.Value}
	if c.Values != nil {
		out.Values = append([]float64(nil), c.Values...)
	}
	if c.Coords != nil {
		out.Coords = append([]float64(nil), c.Coords...)
	}
	return out
}

// Diff is an elementwise difference between two scalar values.
type Diff func(a, b float64) float64

// Absolute returns |a-b|.
func Absolute(a, b float64) float64 { return math.Abs(a - b) }

// Periodic returns the shortest difference between a and b on a circle of the
// given period, e.g. 360 for dihedral angles in degrees.
func Periodic(period float64) Diff {
	return func(a, b float64) float64 {
		d := math.Mod(math.Abs(a-b), period)
		if d > period/2 {
			d = period - d
		}
		return d
	}
}

// Series is one numeric data set, indexed by item.
type Series struct {
	Name   string
	Values []float64
	// Period > 0 marks the series as periodic.
	Period float64
}

func (s Series) diff() Diff {
	if s.Period > 0 {
		return Periodic(s.Period)
	}
	return Absolute
}

// mean returns the arithmetic mean of s over items, or the circular mean for
// periodic series. The circular mean lies in (-Period/2, Period/2].
func (s Series) mean(items []int) float64 {
	if s.Period > 0 {
		scale := 2 * math.Pi / s.Period
		var sumSin, sumCos float64
		for _, it := range items {
			v := s.Values[it] * scale
			sumSin += math.Sin(v)
			sumCos += math.Cos(v)
		}
		return math.Atan2(sumSin, sumCos) / scale
	}
	var sum float64
	for _, it := range items {
		sum += s.Values[it]
	}
	return sum / float64(len(items))
}
