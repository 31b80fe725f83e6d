package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an advisory flock(2) lock held for the duration of one read
// or write, matching spec.md §4.4's "readers take a shared lock, writers
// an exclusive lock" concurrency policy.
type fileLock struct {
	f *os.File
}

func lockShared(path string) (*fileLock, error) {
	return lock(path, unix.LOCK_SH)
}

func lockExclusive(path string) (*fileLock, error) {
	return lock(path, unix.LOCK_EX)
}

func lock(path string, how int) (*fileLock, error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open lock file %s: %w", lockPath, err)
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: acquire lock on %s: %w", lockPath, err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) Unlock() error {
	defer l.f.Close()
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
