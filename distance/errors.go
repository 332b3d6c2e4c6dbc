package distance

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMask is returned for atom masks that are empty, repeat an atom
	// or select atoms outside the frame.
	ErrInvalidMask = errors.New("distance: invalid atom mask")
	// ErrInvalidMass is returned for mass lists that do not cover every atom or
	// carry non-positive values.
	ErrInvalidMass = errors.New("distance: invalid masses")
	// ErrNoData is returned when a strategy is built without any series or frames.
	ErrNoData = errors.New("distance: no data")
	// ErrEmptyGroup is returned when a centroid is requested for no items.
	ErrEmptyGroup = errors.New("distance: empty item group")
	// ErrItemRange is returned for item indices outside the data set.
	ErrItemRange = errors.New("distance: item index out of range")
	// ErrKindMismatch is returned when a centroid of another kind is passed in.
	ErrKindMismatch = errors.New("distance: centroid kind mismatch")
)

// ErrDimensionMismatch indicates items of incompatible width.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	// What names the mismatching quantity, e.g. "series length".
	What string
}

func (e *ErrDimensionMismatch) Error() string {
	if e.What == "" {
		return fmt.Sprintf("distance: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("distance: %s mismatch: expected %d, got %d", e.What, e.Expected, e.Actual)
}
