package intervention

import "errors"

var (
	// ErrInvalid is returned when an intervention is missing a required field
	// or carries a value its kind cannot express.
	ErrInvalid = errors.New("intervention: invalid configuration")

	// ErrUnsupportedDiagnostic is returned for a diagnostic type the engine
	// does not implement.
	ErrUnsupportedDiagnostic = errors.New("intervention: unsupported diagnostic type")
)
