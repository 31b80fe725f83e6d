//go:build !linux

package observer

import "context"

// NewHook returns a stub Hook on platforms without an evdev-style backend.
// Start always fails with ErrHookUnavailable, matching spec.md §7's fatal
// "exit with a diagnostic code" treatment of HookPermissionDenied.
func NewHook() Hook {
	return unsupportedHook{}
}

type unsupportedHook struct{}

func (unsupportedHook) Start(ctx context.Context, onEvent func(KeyEvent)) error {
	return ErrHookUnavailable
}

func (unsupportedHook) Stop() error { return nil }

// KeyboardDevices reports no devices on platforms without an evdev-style
// backend.
func KeyboardDevices() []string { return nil }
