// internal/domain/errors.go
package domain

import "errors"

// Calculation contract errors. Numeric edge cases (zero denominators,
// missing samples) are handled with documented fallbacks and never
// surface as errors; these fire only on violated preconditions.
var (
	// ErrShapeMismatch indicates paired series of unequal length.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInsufficientHistory indicates an operation that strictly
	// requires more samples than were provided.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrInvalidDomain indicates an input outside its mathematical
	// domain, such as a service level of 0 or 1.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrCalculation indicates an internal numeric failure.
	ErrCalculation = errors.New("calculation error")
)
