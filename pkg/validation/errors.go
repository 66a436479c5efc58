package validation

import "errors"

var (
	// ErrMaxDepthExceeded is returned when a model graph nests deeper than
	// the configured validation depth.
	ErrMaxDepthExceeded = errors.New("validation: maximum validation depth exceeded")

	// ErrValidatable wraps a non-validation error returned by a model's
	// Validate method.
	ErrValidatable = errors.New("validation: model validation failed")
)
