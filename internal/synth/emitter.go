package synth

import "errors"

// ErrUnavailable is returned by an Emitter backend that cannot inject
// synthetic input on this platform or under the current permission set.
var ErrUnavailable = errors.New("synth: keystroke injection unavailable")
