package cluster

import (
	"math"
)

// Stats summarises one final cluster.
type Stats struct {
	Number int
	ID     int
	Size   int
	// Fraction is Size over the number of clustered rows.
	Fraction float64
	// AvgDist and StdDev describe the pairwise distances between members.
	AvgDist float64
	StdDev  float64
	// Representative is the member item closest to the centroid.
	Representative int
	// AvgCentroidDist is the mean centroid distance to every other cluster.
	AvgCentroidDist float64
}

// Summary returns per-cluster statistics in final number order. It
// renumbers first if needed.
func (l *List) Summary() ([]Stats, error) {
	if l.order == nil {
		l.Renumber()
	}

	var total int
	for _, id := range l.order {
		total += int(l.records[id].members.GetCardinality())
	}

	out := make([]Stats, 0, len(l.order))
	for _, id := range l.order {
		rec := &l.records[id]
		rows := rec.members.ToArray()

		st := Stats{
			Number: rec.number,
			ID:     id,
			Size:   len(rows),
		}
		if total > 0 {
			st.Fraction = float64(st.Size) / float64(total)
		}
		st.AvgDist, st.StdDev = l.intraStats(rows)

		rep, err := l.Representative(id)
		if err != nil {
			return nil, err
		}
		st.Representative = rep

		if len(l.order) > 1 {
			c, err := l.Centroid(id)
			if err != nil {
				return nil, err
			}
			var sum float64
			for _, other := range l.order {
				if other == id {
					continue
				}
				oc, err := l.Centroid(other)
				if err != nil {
					return nil, err
				}
				d, err := l.metric.CentroidDist(c, oc)
				if err != nil {
					return nil, err
				}
				sum += d
			}
			st.AvgCentroidDist = sum / float64(len(l.order)-1)
		}
		out = append(out, st)
	}
	return out, nil
}

// intraStats returns the mean and standard deviation of the frame distances
// between every pair of rows.
func (l *List) intraStats(rows []uint32) (mean, stddev float64) {
	if len(rows) < 2 {
		return 0, 0
	}
	var sum, sumSq float64
	var n int
	for a := 0; a < len(rows)-1; a++ {
		for b := a + 1; b < len(rows); b++ {
			d := l.frameDist.At(int(rows[a]), int(rows[b]))
			sum += d
			sumSq += d * d
			n++
		}
	}
	mean = sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
