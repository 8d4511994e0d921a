package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrRunNotFound    = fmt.Errorf("%w: run", ErrNotFound)

	// Table errors
	ErrEmptyTable       = errors.New("table has no rows")
	ErrRaggedRow        = errors.New("row width does not match column count")
	ErrDuplicateColumn  = errors.New("duplicate column key")
	ErrLengthMismatch   = errors.New("column length mismatch")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Transform errors
	ErrNonPositive = errors.New("log transform requires strictly positive values")

	// Model errors
	ErrSingularDesign = errors.New("design matrix is singular or rank deficient")
	ErrNotNested      = errors.New("models are not nested")

	// Split and determinism errors
	ErrInvalidSplit        = errors.New("invalid train/test split")
	ErrFingerprintMismatch = errors.New("run fingerprint mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewColumnNotFoundError(key ColumnKey) error {
	return fmt.Errorf("%w %s", ErrColumnNotFound, key)
}

func NewNonPositiveError(key ColumnKey, row int, value float64) error {
	return fmt.Errorf("%w: column %s row %d has value %g", ErrNonPositive, key, row, value)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTableError(err error) bool {
	return errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrRaggedRow) ||
		errors.Is(err, ErrDuplicateColumn) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrInsufficientData)
}

func IsModelError(err error) bool {
	return errors.Is(err, ErrSingularDesign) ||
		errors.Is(err, ErrNotNested)
}
