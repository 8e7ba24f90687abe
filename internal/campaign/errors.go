package campaign

import "errors"

var (
	// ErrInvalidConfig covers configuration errors: unknown cascade types,
	// mutually exclusive options supplied together, missing required
	// configuration, malformed targets.
	ErrInvalidConfig = errors.New("campaign: invalid configuration")

	// ErrOutOfRange covers numeric and domain errors: negative repetitions,
	// negative radius, coverage outside [0,1], negative depth.
	ErrOutOfRange = errors.New("campaign: value out of range")
)
