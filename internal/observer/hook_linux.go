//go:build linux

package observer

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// linuxHook reads raw input_event structs from every /dev/input/event*
// keyboard device (evdev), the standard Linux global-input-monitoring
// surface accessibility/input-monitoring clients are granted access to
// (spec.md §1's "permissions the host OS grants to accessibility/
// input-monitoring clients").
type linuxHook struct {
	mu      sync.Mutex
	files   []*os.File
	stopped chan struct{}
}

// NewHook returns the Linux evdev-backed Hook.
func NewHook() Hook {
	return &linuxHook{stopped: make(chan struct{})}
}

// inputEvent mirrors struct input_event from <linux/input.h> on a 64-bit
// Linux system (two 8-byte timeval fields on most modern kernels/archs).
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

const (
	evKey       = 0x01
	keyPressed  = 1
	keyRepeated = 2
)

func (h *linuxHook) Start(ctx context.Context, onEvent func(KeyEvent)) error {
	devices, err := keyboardDevices()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHookUnavailable, err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("%w: no keyboard input devices found (check input-group membership)", ErrHookUnavailable)
	}

	h.mu.Lock()
	for _, path := range devices {
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			continue // spec.md §7: lack of access to one device is not fatal by itself.
		}
		h.files = append(h.files, f)
	}
	h.mu.Unlock()

	if len(h.files) == 0 {
		return fmt.Errorf("%w: permission denied on all input devices", ErrHookUnavailable)
	}

	// Every device gets its own reader goroutine, but all of them funnel
	// into this one channel. A single consumer goroutine below drains it,
	// so onEvent (and the shift state it depends on) is only ever touched
	// from one goroutine at a time, matching the FSM's single-task, no-lock
	// invariant (spec.md §4.1/§5) even when several evdev nodes produce
	// keyboard events concurrently.
	rawEvents := make(chan inputEvent, 64)

	var wg sync.WaitGroup
	for _, f := range h.files {
		wg.Add(1)
		go func(f *os.File) {
			defer wg.Done()
			h.readLoop(ctx, f, rawEvents)
		}(f)
	}

	go func() {
		<-ctx.Done()
		h.Stop()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.dispatch(rawEvents, onEvent)
	}()

	wg.Wait()
	close(rawEvents)
	<-done
	return nil
}

// readLoop decodes raw input_event structs off one device and forwards
// them to the shared channel. It never calls onEvent directly.
func (h *linuxHook) readLoop(ctx context.Context, f *os.File, rawEvents chan<- inputEvent) {
	buf := make([]byte, binary.Size(inputEvent{}))
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopped:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil || n != len(buf) {
			return
		}
		var ev inputEvent
		if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &ev); err != nil {
			continue
		}
		if ev.Type != evKey {
			continue
		}

		select {
		case rawEvents <- ev:
		case <-ctx.Done():
			return
		case <-h.stopped:
			return
		}
	}
}

// dispatch is the single consumer of rawEvents: it owns the shift state
// and is the only goroutine that ever calls onEvent, preserving the
// one-task-feeds-the-FSM model internal/daemon/run.go relies on.
func (h *linuxHook) dispatch(rawEvents <-chan inputEvent, onEvent func(KeyEvent)) {
	shift := false
	for ev := range rawEvents {
		if ev.Code == keycodeLeftShift || ev.Code == keycodeRightShift {
			shift = ev.Value != 0
			continue
		}
		if ev.Value != keyPressed && ev.Value != keyRepeated {
			continue
		}

		if ev.Code == keycodeBackspace {
			onEvent(KeyEvent{Backspace: true})
			continue
		}
		if r, ok := keycodeToRune(ev.Code, shift); ok {
			onEvent(KeyEvent{Rune: r})
		}
	}
}

func (h *linuxHook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.stopped:
	default:
		close(h.stopped)
	}
	for _, f := range h.files {
		f.Close()
	}
	h.files = nil
	return nil
}

// keyboardDevices enumerates /dev/input/event* nodes. A production
// deployment would filter to devices advertising EV_KEY via
// /sys/class/input/*/device/capabilities/ev; we keep the probe simple and
// rely on per-device open() failing harmlessly for non-keyboard nodes.
func keyboardDevices() ([]string, error) {
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// KeyboardDevices reports the /dev/input/event* nodes a Hook would try to
// open, for doctor-style diagnostics.
func KeyboardDevices() []string {
	devices, _ := keyboardDevices()
	return devices
}
