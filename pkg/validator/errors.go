package validator

import "errors"

var (
	// ErrUnknownRule is returned when a validate tag names a rule that is not registered.
	ErrUnknownRule = errors.New("validator: unknown rule")

	// ErrInvalidRuleParam is returned when a rule parameter cannot be parsed.
	ErrInvalidRuleParam = errors.New("validator: invalid rule parameter")

	// ErrUnsupportedKind is returned when a rule cannot check a value of the given kind.
	ErrUnsupportedKind = errors.New("validator: rule does not support value kind")
)
