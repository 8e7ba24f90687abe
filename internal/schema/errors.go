package schema

import "errors"

var (
	// ErrUnknownClass is returned when a provider has no definition for a class name.
	ErrUnknownClass = errors.New("schema: unknown class")

	// ErrUnknownParam is returned when a parameter is not declared by its class.
	ErrUnknownParam = errors.New("schema: unknown parameter")

	// ErrInvalidValue is returned when a parameter value has the wrong type,
	// falls outside the declared range, or is not one of the allowed values.
	ErrInvalidValue = errors.New("schema: invalid value")
)
