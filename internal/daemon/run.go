package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/kir-gadjello/expando/internal/api"
	"github.com/kir-gadjello/expando/internal/config"
	"github.com/kir-gadjello/expando/internal/expand"
	"github.com/kir-gadjello/expando/internal/logging"
	"github.com/kir-gadjello/expando/internal/observer"
	"github.com/kir-gadjello/expando/internal/store"
	"github.com/kir-gadjello/expando/internal/synth"
)

// Services bundles the constructed core components a Run call wires
// together: the single-threaded observer region, the store, the
// synthesizer, and the control API (spec.md §5's task partitioning).
type Services struct {
	cfg        config.Resolved
	st         *store.Store
	log        *logging.Logger
	pidPath    string
	apiSidecar string
	scriptDir  string
}

// NewServices constructs the wiring needed by Run from already-resolved
// config and an already-open store.
func NewServices(cfg config.Resolved, st *store.Store, pidPath, apiSidecarPath, scriptDir string, log *logging.Logger) *Services {
	if log == nil {
		log = logging.Default()
	}
	return &Services{cfg: cfg, st: st, log: log, pidPath: pidPath, apiSidecar: apiSidecarPath, scriptDir: scriptDir}
}

// Run starts the observer task, the store-watcher task, and the control
// API, and blocks until ctx is canceled, then performs the graceful
// shutdown sequence from spec.md §4.5: unregister the hook and drain any
// in-flight expansion. Run does not release pidFile: the caller, which has
// already called Acquire for it, releases the lock and deletes the PID
// file with pidFile.Release.
func Run(ctx context.Context, svc *Services, pidFile *PIDFile) error {
	hook := observer.NewHook()

	emitter, err := synth.NewEmitter()
	if err != nil {
		return fmt.Errorf("daemon: %w", err)
	}

	// suspended implements the feedback-suppression flag of spec.md
	// §4.3/§5: raised before synthesized keystrokes are emitted, lowered
	// once emission completes, so the hook callback below drops events
	// arriving mid-synthesis instead of feeding them back into the FSM.
	var suspended bool
	synthesizer := synth.New(emitter, svc.cfg.SynthDelayMin, svc.cfg.SynthDelayMax,
		func() { suspended = true },
		func() { suspended = false },
	)

	// current is the observer's read-through snapshot of the store,
	// replaced wholesale on each watcher notification (spec.md §5: "the
	// observer task must not block on store writes: it always reads from
	// its in-memory snapshot"). atomic.Pointer gives the hook goroutine a
	// lock-free read of whatever snapshot the watcher last delivered.
	var current atomic.Pointer[store.Snapshot]
	current.Store(&store.Snapshot{ByName: map[string]store.Entry{}})
	lookup := func(name string) (store.Entry, bool) {
		e, ok := current.Load().ByName[name]
		return e, ok
	}

	onMatch := func(m observer.Match) {
		// Expand dispatches on the default ':'/'!' characters, so map a
		// configured trigger override onto them.
		trigger := ':'
		if m.Trigger == svc.cfg.ActiveTrigger {
			trigger = '!'
		}
		expCtx, cancel := context.WithTimeout(ctx, svc.cfg.ScriptTimeout+time.Second)
		result, err := expand.Expand(expCtx, m.Entry, trigger, m.Args, m.DeletionCount, expand.Options{
			ScriptDir:     svc.scriptDir,
			ScriptTimeout: svc.cfg.ScriptTimeout,
		})
		cancel()
		if err != nil {
			svc.log.Printf("expansion failed for %q: %v", m.Entry.Shortcut, err)
			return
		}
		if err := synthesizer.Replace(ctx, result.DeletionCount, result.Text); err != nil {
			svc.log.Printf("synthesis failed for %q: %v", m.Entry.Shortcut, err)
		}
	}

	fsm := observer.New(svc.cfg.LiteralTrigger, svc.cfg.ActiveTrigger, 256, lookup, onMatch)

	// recentIdleText publishes the observer's idle-text buffer for
	// /api/daemon/details diagnostics. fsm.OnIdleText is invoked from the
	// single observer task; atomic.Pointer gives the API's request
	// goroutines a lock-free read, the same handoff pattern as `current`
	// above.
	var recentIdleText atomic.Pointer[string]
	empty := ""
	recentIdleText.Store(&empty)
	fsm.OnIdleText(func(s string) { recentIdleText.Store(&s) })

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	reloads := svc.st.Watch(watchCtx, svc.cfg.PollInterval, svc.log)

	apiServer := api.New(svc.st, "", func() (bool, int) {
		return true, pidFilePID(pidFile)
	}, svc.log)
	apiServer.SetRecentTextSource(func() string { return *recentIdleText.Load() })
	if err := apiServer.Listen(svc.cfg.APIPortRangeLow, svc.cfg.APIPortRangeLen); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	if err := writePortSidecar(svc.apiSidecar, apiServer.Port()); err != nil {
		svc.log.Printf("daemon: failed to write api port sidecar: %v", err)
	}

	apiCtx, cancelAPI := context.WithCancel(ctx)
	defer cancelAPI()
	apiErrCh := make(chan error, 1)
	go func() { apiErrCh <- apiServer.Serve(apiCtx) }()

	hookCtx, cancelHook := context.WithCancel(ctx)
	defer cancelHook()
	hookErrCh := make(chan error, 1)
	go func() {
		hookErrCh <- hook.Start(hookCtx, func(ev observer.KeyEvent) {
			if suspended {
				return
			}
			if ev.Backspace {
				fsm.FeedBackspace()
				return
			}
			fsm.FeedRune(ev.Rune)
		})
	}()

	for {
		select {
		case <-ctx.Done():
			cancelHook()
			cancelAPI()
			<-hookErrCh
			if apiErrCh != nil {
				<-apiErrCh
			}
			return nil

		case snap, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			snapCopy := snap
			current.Store(&snapCopy)

		case err := <-hookErrCh:
			return fmt.Errorf("daemon: observer hook stopped: %w", err)

		case err := <-apiErrCh:
			if err != nil {
				svc.log.Printf("daemon: control api stopped: %v", err)
			}
			// The server goroutine has sent its only value; shutdown must
			// not wait for another.
			apiErrCh = nil
		}
	}
}

func pidFilePID(p *PIDFile) int {
	// The PID file is written with this process's own PID at Acquire
	// time; re-reading keeps Run from needing a second field for it.
	pid, _ := readPID(p.path)
	return pid
}

func writePortSidecar(path string, port int) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", port)), 0o644)
}
