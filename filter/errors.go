package filter

import (
	"errors"
	"fmt"
)

// Validation and configuration failures, always rejected before any scorer
// call.
var (
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrUnknownMode         = errors.New("unknown censor mode")
	ErrThresholdOutOfRange = errors.New("threshold must be between 0 and 1")
)

// ClassificationError wraps a scorer failure. Scoring failures are fatal
// for the request that hit them and are never converted into a default
// verdict.
type ClassificationError struct {
	Cause error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Cause)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}
