package hclust

import "github.com/hupe1980/hclust/distance"

// Dataset is the item source of a run: either scalar series or coordinate
// frames. Items are addressed by index and never modified.
type Dataset struct {
	Series []distance.Series
	Frames distance.Frames
}

// Len returns the number of items. Frames take precedence over series.
func (d Dataset) Len() int {
	if len(d.Frames.Coords) > 0 {
		return len(d.Frames.Coords)
	}
	if len(d.Series) > 0 {
		return len(d.Series[0].Values)
	}
	return 0
}
