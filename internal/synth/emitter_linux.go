//go:build linux

package synth

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// uinput ioctl constants and struct layout, from <linux/uinput.h>. Not
// exposed by golang.org/x/sys/unix, so declared here the way a uinput
// client must.
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	evSyn     = 0x00
	evKeyT    = 0x01
	synReport = 0

	keyLeftCtrl  = 29
	keyLeftShift = 42
	keyU         = 22
	keyBackspace = 14
	keyEnter     = 28
)

type uinputSetup struct {
	ID           uinputID
	Name         [80]byte
	FFEffectsMax uint32
}

type uinputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type inputEvent struct {
	Sec, Usec int64
	Type      uint16
	Code      uint16
	Value     int32
}

// linuxEmitter injects key events through a virtual /dev/uinput device —
// the standard userspace mechanism for synthesizing global input on
// Linux, paralleling evdev on the read side (internal/observer's Hook).
type linuxEmitter struct {
	f *os.File
}

// NewEmitter opens /dev/uinput and registers a virtual keyboard capable
// of emitting the ASCII printable range plus backspace/enter, and the
// Ctrl+Shift+U Unicode-entry sequence GTK/IBus desktops recognize for
// everything else.
func NewEmitter() (Emitter, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open /dev/uinput: %v", ErrUnavailable, err)
	}

	if err := ioctl(f, uiSetEvBit, evSyn); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := ioctl(f, uiSetEvBit, evKeyT); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for code := range keycodeToRune {
		_ = ioctl(f, uiSetKeyBit, uintptr(code))
	}
	for _, code := range []uintptr{keyLeftCtrl, keyLeftShift, keyU, keyBackspace, keyEnter} {
		_ = ioctl(f, uiSetKeyBit, code)
	}

	var setup uinputSetup
	copy(setup.Name[:], "expando-synthesizer")
	setup.ID = uinputID{BusType: 0x03, Vendor: 0x1, Product: 0x1, Version: 1}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(0x405c5503) /* UI_DEV_SETUP */, uintptr(unsafe.Pointer(&setup))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: UI_DEV_SETUP: %v", ErrUnavailable, errno)
	}
	if err := ioctlNoArg(f, uiDevCreate); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: UI_DEV_CREATE: %v", ErrUnavailable, err)
	}
	// The kernel needs a moment to register the new device with userspace
	// input stacks before events are delivered reliably.
	time.Sleep(50 * time.Millisecond)

	return &linuxEmitter{f: f}, nil
}

func (e *linuxEmitter) Close() error {
	ioctlNoArg(e.f, uiDevDestroy)
	return e.f.Close()
}

func (e *linuxEmitter) Backspace() error {
	return e.tapKey(keyBackspace, false)
}

func (e *linuxEmitter) Rune(r rune) error {
	if r == '\n' {
		return e.tapKey(keyEnter, false)
	}
	if code, shift, ok := runeToKeycode(r); ok {
		return e.tapKey(code, shift)
	}
	return e.typeUnicode(r)
}

func (e *linuxEmitter) tapKey(code uint16, shift bool) error {
	if shift {
		if err := e.send(evKeyT, keyLeftShift, 1); err != nil {
			return err
		}
	}
	if err := e.send(evKeyT, code, 1); err != nil {
		return err
	}
	if err := e.send(evKeyT, code, 0); err != nil {
		return err
	}
	if shift {
		if err := e.send(evKeyT, keyLeftShift, 0); err != nil {
			return err
		}
	}
	return e.syn()
}

// typeUnicode emits the IBus/GTK Unicode-entry sequence: hold
// Ctrl+Shift+U, type the codepoint's hex digits, release. Desktop
// environments without that input method will not receive the character;
// this is a best-effort fallback for runes outside the ASCII table.
func (e *linuxEmitter) typeUnicode(r rune) error {
	if err := e.send(evKeyT, keyLeftCtrl, 1); err != nil {
		return err
	}
	if err := e.send(evKeyT, keyLeftShift, 1); err != nil {
		return err
	}
	if err := e.send(evKeyT, keyU, 1); err != nil {
		return err
	}
	if err := e.send(evKeyT, keyU, 0); err != nil {
		return err
	}
	hex := fmt.Sprintf("%x", r)
	for _, digit := range hex {
		code, shift, ok := runeToKeycode(digit)
		if !ok {
			continue
		}
		if err := e.tapKeyHeld(code, shift); err != nil {
			return err
		}
	}
	if err := e.send(evKeyT, keyLeftShift, 0); err != nil {
		return err
	}
	return e.send(evKeyT, keyLeftCtrl, 0)
}

func (e *linuxEmitter) tapKeyHeld(code uint16, shift bool) error {
	if err := e.send(evKeyT, code, 1); err != nil {
		return err
	}
	if err := e.send(evKeyT, code, 0); err != nil {
		return err
	}
	return e.syn()
}

func (e *linuxEmitter) send(evType, code uint16, value int32) error {
	ev := inputEvent{Type: evType, Code: code, Value: value}
	buf := (*[unsafe.Sizeof(inputEvent{})]byte)(unsafe.Pointer(&ev))[:]
	_, err := e.f.Write(buf)
	return err
}

func (e *linuxEmitter) syn() error {
	return e.send(evSyn, synReport, 0)
}

func ioctl(f *os.File, request, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), request, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlNoArg(f *os.File, request uintptr) error {
	return ioctl(f, request, 0)
}

// runeToKeycode covers the same printable-ASCII range internal/observer's
// keymap reads, inverted for injection.
func runeToKeycode(r rune) (code uint16, shift bool, ok bool) {
	for c, ru := range keycodeToRune {
		if ru == r {
			return c, false, true
		}
	}
	for c, ru := range keycodeToShiftedRune {
		if ru == r {
			return c, true, true
		}
	}
	return 0, false, false
}
