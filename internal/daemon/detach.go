package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/mattn/go-isatty"
)

// Detach re-executes the current binary with argv unchanged, detached
// from the controlling terminal via Setsid, and returns true without
// waiting for the child; it does not exit the calling process. Mirrors the teacher's is_terminal TTY-detection idiom in
// main.go: when stdout isn't a terminal already (e.g. launched from a
// service manager), detaching is a no-op and Detach returns false so the
// caller runs in the foreground instead (spec.md §4.5: "on others, run in
// the foreground").
func Detach() (detached bool, err error) {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("daemon: resolve executable path: %w", err)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("daemon: open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.Env = os.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("daemon: start detached process: %w", err)
	}
	return true, nil
}
