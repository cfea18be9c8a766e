package merkle

import (
	"fmt"
)

// ValidationError describes a structurally malformed multiproof or request:
// an unrecognized flag, a root of the wrong length, or an empty or duplicate
// target index set.
type ValidationError struct {
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e *ValidationError) Error() string {
	return e.Description
}

func validationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Description: fmt.Sprintf(format, args...)}
}

// BoundsError describes a coordinate or leaf index outside the tree.
type BoundsError struct {
	Coordinate  Coordinate
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Coordinate, e.Description)
}

func boundsError(coordinate Coordinate, format string, args ...interface{}) *BoundsError {
	return &BoundsError{Coordinate: coordinate, Description: fmt.Sprintf(format, args...)}
}
