// Package synth implements the keystroke synthesizer from spec.md §4.3:
// delete the recognized typed sequence and emit the expansion text at the
// OS input layer.
package synth

import (
	"context"
	"time"
)

// Emitter is the OS-level backend a Synthesizer drives: backspace and
// unicode character injection. Platforms without a working backend (or
// without the permissions it requires) get no Emitter: NewEmitter returns
// an error that is or wraps ErrUnavailable, matching the Hook-unavailable contract in
// internal/observer's platform backends.
type Emitter interface {
	Backspace() error
	Rune(r rune) error
	Close() error
}

// Synthesizer is stateless between calls (spec.md §4.3 idempotency).
type Synthesizer struct {
	emitter  Emitter
	delayMin time.Duration
	delayMax time.Duration
	suspend  func()
	resume   func()
}

// New builds a Synthesizer. suspend/resume raise and lower the observer's
// feedback-suppression flag around emission (spec.md §4.3/§5); either may
// be nil if the caller manages suspension itself.
func New(emitter Emitter, delayMin, delayMax time.Duration, suspend, resume func()) *Synthesizer {
	return &Synthesizer{emitter: emitter, delayMin: delayMin, delayMax: delayMax, suspend: suspend, resume: resume}
}

// Replace emits deleteCount backspace events, then text rune by rune,
// each newline becoming a single platform line-break character (spec.md
// §4.3). On the first emitter error, emission aborts without attempting
// partial rollback — per spec.md, the user can undo.
func (s *Synthesizer) Replace(ctx context.Context, deleteCount int, text string) error {
	if s.suspend != nil {
		s.suspend()
	}
	defer func() {
		if s.resume != nil {
			s.resume()
		}
	}()

	for i := 0; i < deleteCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.emitter.Backspace(); err != nil {
			return err
		}
		s.pace()
	}

	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.emitter.Rune(r); err != nil {
			return err
		}
		s.pace()
	}
	return nil
}

func (s *Synthesizer) pace() {
	d := s.delayMin
	if s.delayMax > s.delayMin {
		d = s.delayMin + (s.delayMax-s.delayMin)/2
	}
	if d > 0 {
		time.Sleep(d)
	}
}
