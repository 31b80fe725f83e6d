// Package logging provides the small stdlib-backed logger every component
// in expando accepts, matching the plain log.Printf/log.Fatalf idiom the
// rest of the module uses.
package logging

import (
	"io"
	"log"
	"os"
)

// Logger is the minimal surface components depend on, letting tests supply
// a buffer-backed logger instead of the process-wide default.
type Logger struct {
	*log.Logger
}

// New returns a logger writing to w with the given prefix. Pass os.Stderr
// (or nil, which defaults to it) for normal operation.
func New(w io.Writer, prefix string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{Logger: log.New(w, prefix, log.LstdFlags)}
}

// Default returns a logger writing to os.Stderr with no prefix, suitable
// for components that don't need to distinguish their log lines.
func Default() *Logger {
	return New(os.Stderr, "")
}
