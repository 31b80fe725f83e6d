// Package daemon implements the single-instance lifecycle from spec.md
// §4.5: start/stop/status over a PID file with an advisory lock, pairing
// the observer with the local control API.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kir-gadjello/expando/internal/logging"
)

// State is the daemon's reported lifecycle state (spec.md §3 DaemonState,
// §4.5 status()).
type State int

const (
	Stopped State = iota
	Running
	Stale
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stale:
		return "stale"
	default:
		return "stopped"
	}
}

var (
	// ErrAlreadyRunning is spec.md §7's DaemonAlreadyRunning.
	ErrAlreadyRunning = errors.New("daemon: already running")
)

// PIDFile manages the lifecycle's PID file and advisory lock, exclusively
// owned by the running daemon process (spec.md §3 ownership note).
type PIDFile struct {
	path string
	f    *os.File
}

// Acquire creates (or takes over) the PID file at path, holding an
// advisory exclusive lock for the process lifetime. It fails with
// ErrAlreadyRunning if the recorded PID is alive and still holds the
// lock, per spec.md §4.5 start().
func Acquire(path string) (*PIDFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("daemon: open pid file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		pid, _ := readPID(path)
		f.Close()
		if pid > 0 && processAlive(pid) {
			return nil, fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
		}
		return nil, fmt.Errorf("daemon: lock pid file %s: %w", path, err)
	}

	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, fmt.Errorf("daemon: truncate pid file: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("daemon: write pid file: %w", err)
	}

	return &PIDFile{path: path, f: f}, nil
}

// Release unlocks and removes the PID file (spec.md §4.5 graceful
// shutdown: "release the lock, delete the PID file").
func (p *PIDFile) Release() error {
	unix.Flock(int(p.f.Fd()), unix.LOCK_UN)
	if err := p.f.Close(); err != nil {
		return err
	}
	return os.Remove(p.path)
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

// Status probes path's PID file existence and liveness, per spec.md §4.5
// status(): Running | Stopped | Stale.
func Status(path string) (State, int) {
	pid, err := readPID(path)
	if err != nil {
		return Stopped, 0
	}
	if processAlive(pid) {
		return Running, pid
	}
	return Stale, pid
}

// Stop reads the PID file, sends SIGTERM, and waits up to timeout for the
// process to exit, removing a stale PID file on success (spec.md §4.5
// stop()).
func Stop(path string, timeout time.Duration, log *logging.Logger) error {
	if log == nil {
		log = logging.Default()
	}
	pid, err := readPID(path)
	if err != nil {
		return fmt.Errorf("daemon: no pid file at %s: %w", path, err)
	}
	if !processAlive(pid) {
		log.Printf("daemon: pid %d already gone, removing stale pid file", pid)
		return os.Remove(path)
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("daemon: signal pid %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon: pid %d did not exit within %s", pid, timeout)
}
