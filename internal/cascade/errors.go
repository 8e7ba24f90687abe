package cascade

import "errors"

var (
	// ErrCycle is returned when events re-arm each other in a loop.
	ErrCycle = errors.New("cascade: signal cycle")

	// ErrDanglingTether is returned when an event listens on a tether that
	// no event broadcasts.
	ErrDanglingTether = errors.New("cascade: tether never broadcast")
)
