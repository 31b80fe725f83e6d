package observer

import (
	"context"
	"errors"
)

// ErrHookUnavailable is returned by a Hook backend that cannot register a
// global keyboard hook on this platform or under the current permission
// set — spec.md §7's HookPermissionDenied, fatal for the observer at
// startup.
var ErrHookUnavailable = errors.New("observer: global keyboard hook unavailable")

// KeyEvent is a single observed key press, already translated to a rune
// where possible.
type KeyEvent struct {
	Rune      rune
	Backspace bool
}

// Hook is the OS-level global keyboard hook abstraction from spec.md §9:
// "model the global hook as an owned handle whose drop/close
// de-registers the hook; all handling flows through a single consumer
// task". Start blocks, delivering events to onEvent from a single
// dedicated goroutine until ctx is canceled or Stop is called.
type Hook interface {
	Start(ctx context.Context, onEvent func(KeyEvent)) error
	Stop() error
}
