package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_WatchEmitsInitialSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := st.Add("sig", "Best,\nAlice"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := st.Watch(ctx, 20*time.Millisecond, nil)
	select {
	case snap := <-snaps:
		if _, ok := snap.ByName["sig"]; !ok {
			t.Fatalf("expected initial snapshot to contain sig, got %v", snap.ByName)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}
}

func TestStore_WatchEmitsOnExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := st.Watch(ctx, 20*time.Millisecond, nil)
	<-snaps // initial (empty) snapshot

	other, err := Open(path)
	if err != nil {
		t.Fatalf("Open (writer): %v", err)
	}
	if _, err := other.Add("sig", "hello"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Force the mtime to visibly differ on filesystems with coarse
	// resolution, same concern spec.md §3 raises for timestamp ordering.
	now := time.Now().Add(time.Second)
	os.Chtimes(path, now, now)

	select {
	case snap := <-snaps:
		if _, ok := snap.ByName["sig"]; !ok {
			t.Fatalf("expected snapshot to reflect external write, got %v", snap.ByName)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestStore_WatchClosesChannelOnContextDone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	snaps := st.Watch(ctx, 10*time.Millisecond, nil)
	<-snaps // initial

	cancel()
	select {
	case _, ok := <-snaps:
		if ok {
			// Drain until closed.
			for range snaps {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel to close")
	}
}
