package hclust

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hclust/distance"
)

var (
	// ErrConfiguration is matched by every configuration error.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNoMatrixStore is returned when a run asks to load or save a matrix
	// but no store was configured.
	ErrNoMatrixStore = errors.New("no matrix store configured")
)

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigError) Unwrap() error { return e.cause }

// ErrDimensionMismatch indicates items or matrices of incompatible width.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	What     string
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch (%s): expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *distance.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, What: dm.What, cause: err}
	}

	// Malformed inputs to the strategy are configuration errors.
	switch {
	case errors.Is(err, distance.ErrInvalidMask):
		return &ConfigError{Field: "mask", Reason: err.Error(), cause: err}
	case errors.Is(err, distance.ErrInvalidMass):
		return &ConfigError{Field: "mass", Reason: err.Error(), cause: err}
	case errors.Is(err, distance.ErrNoData):
		return &ConfigError{Field: "dataset", Reason: err.Error(), cause: err}
	}

	return err
}
