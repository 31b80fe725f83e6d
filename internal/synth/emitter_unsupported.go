//go:build !linux

package synth

// NewEmitter always fails with ErrUnavailable on platforms without a
// uinput-style backend; it returns no Emitter.
func NewEmitter() (Emitter, error) {
	return nil, ErrUnavailable
}
