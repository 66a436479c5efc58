package metadata

import "errors"

var (
	// ErrPropertyNotFound is returned when metadata is requested for a field the
	// container type does not declare.
	ErrPropertyNotFound = errors.New("metadata: property not found")

	// ErrNotStruct is returned when property metadata is requested for a
	// container that is not a struct.
	ErrNotStruct = errors.New("metadata: container is not a struct")

	// ErrInvalidCatalog is returned when a message catalog cannot be parsed.
	ErrInvalidCatalog = errors.New("metadata: invalid message catalog")
)
