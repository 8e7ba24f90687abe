package trigger

import "errors"

// ErrCollision is returned when a tether name is already issued in the
// document being built.
var ErrCollision = errors.New("trigger: tether name collision")
