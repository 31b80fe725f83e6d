package store

import (
	"context"
	"os"
	"time"

	"github.com/kir-gadjello/expando/internal/logging"
)

// Snapshot is an immutable replacement view of the store's entries,
// delivered to the observer via the reload channel (spec.md §5: "the
// in-memory store snapshot is owned exclusively by the observer;
// producers deliver immutable replacement snapshots").
type Snapshot struct {
	ByName map[string]Entry
}

func newSnapshot(entries []Entry) Snapshot {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Name()] = e
	}
	return Snapshot{ByName: m}
}

// Watch polls the backing file's mtime at the given interval (spec.md
// §4.4 watch(): "detected via mtime/inode polling at a 1-2s cadence") and
// reloads + emits a snapshot whenever it changes, including changes made
// by this process's own Save calls. The channel is closed when ctx is
// done.
func (s *Store) Watch(ctx context.Context, interval time.Duration, log *logging.Logger) <-chan Snapshot {
	if log == nil {
		log = logging.Default()
	}
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)

		var lastMtime time.Time
		var lastSize int64

		emit := func() {
			if err := s.Reload(); err != nil {
				log.Printf("store watch: reload failed: %v", err)
				return
			}
			select {
			case out <- newSnapshot(s.List()):
			case <-ctx.Done():
			}
		}

		// Emit once immediately so subscribers start with a populated view.
		emit()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(s.path)
				if err != nil {
					continue
				}
				if info.ModTime().Equal(lastMtime) && info.Size() == lastSize {
					continue
				}
				lastMtime = info.ModTime()
				lastSize = info.Size()
				emit()
			}
		}
	}()

	return out
}
