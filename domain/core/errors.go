package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: fail fast, abort the affected stage only.
	ErrDatasetNotFound     = errors.New("dataset not found")
	ErrInvalidSpec         = errors.New("invalid model specification")
	ErrNonPositiveExposure = errors.New("non-positive exposure")
	ErrInsufficientData    = errors.New("insufficient data for analysis")

	// Estimation errors
	ErrInsufficientDraws = errors.New("insufficient posterior draws")
	ErrMismatchedScores  = errors.New("scores computed on different observations")
	ErrDegenerateTail    = errors.New("degenerate importance weight tail")
)

// Error constructors with context
func NewDatasetNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
}

func NewSpecError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpec, reason)
}

func NewExposureError(row int, value float64) error {
	return fmt.Errorf("%w: observation %d has exposure2 %g", ErrNonPositiveExposure, row, value)
}

func NewDrawFloorError(got, floor int) error {
	return fmt.Errorf("%w: have %d draws, need at least %d", ErrInsufficientDraws, got, floor)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrDatasetNotFound) ||
		errors.Is(err, ErrInvalidSpec) ||
		errors.Is(err, ErrNonPositiveExposure) ||
		errors.Is(err, ErrInsufficientData)
}

func IsEstimationError(err error) bool {
	return errors.Is(err, ErrInsufficientDraws) ||
		errors.Is(err, ErrMismatchedScores) ||
		errors.Is(err, ErrDegenerateTail)
}
