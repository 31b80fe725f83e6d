package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireWritesOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.pid")
	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer pf.Release()

	pid, err := readPID(path)
	if err != nil {
		t.Fatalf("readPID: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("got pid %d, want %d", pid, os.Getpid())
	}
}

func TestAcquireTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.pid")
	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer pf.Release()

	_, err = Acquire(path)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("got %v, want ErrAlreadyRunning", err)
	}
}

func TestReleaseRemovesPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.pid")
	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := pf.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected pid file to be removed, stat err = %v", err)
	}
}

func TestStatusStoppedWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.pid")
	state, pid := Status(path)
	if state != Stopped || pid != 0 {
		t.Fatalf("got state=%v pid=%d", state, pid)
	}
}

func TestStatusRunningForLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.pid")
	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer pf.Release()

	state, pid := Status(path)
	if state != Running || pid != os.Getpid() {
		t.Fatalf("got state=%v pid=%d", state, pid)
	}
}

func TestStatusStaleForDeadProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.pid")
	// PID 99999 is extremely unlikely to be alive in a test sandbox; this
	// mirrors a crashed daemon that never cleaned up its PID file.
	if err := os.WriteFile(path, []byte("99999"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	state, pid := Status(path)
	if state != Stale || pid != 99999 {
		t.Fatalf("got state=%v pid=%d", state, pid)
	}
}

func TestStopRemovesStalePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.pid")
	if err := os.WriteFile(path, []byte("99999"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := Stop(path, time.Second, nil); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected stale pid file to be removed")
	}
}
