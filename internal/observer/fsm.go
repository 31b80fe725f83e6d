package observer

import (
	"unicode"

	"github.com/kir-gadjello/expando/internal/store"
)

type state int

const (
	stateIdle state = iota
	stateArmed
	stateCollectingName
	stateCollectingArgs
)

// Lookup resolves a shortcut's index name to its stored entry, the same
// contract store.Store.Get satisfies. Any lookup error upstream is
// expected to already have been converted to (zero, false) — per spec.md
// §4.1, a store-lookup error is "treated as no match".
type Lookup func(name string) (store.Entry, bool)

// Match is emitted once the FSM recognizes a complete (trigger, shortcut,
// args) triple that resolves against the store (spec.md §4.1/§4.2).
type Match struct {
	Entry         store.Entry
	Trigger       rune
	Args          []string // nil for a bare shortcut
	DeletionCount int
}

// FSM is the single-threaded, cooperative trigger-recognition state
// machine from spec.md §4.1. It must only be driven from the observer's
// dedicated task — it holds no internal locking, matching the teacher's
// single-goroutine-owns-mutable-state idiom in session.go's input loop.
type FSM struct {
	state state

	literalTrigger rune
	activeTrigger  rune

	atBoundary bool
	buf        *TypedBuffer

	trigger    rune
	nameRunes  []rune
	argsRunes  []rune
	parenDepth int

	lookup  Lookup
	onMatch func(Match)

	suspended bool

	onIdleText func(string)
}

// New constructs an FSM. lookup is consulted at the name/args boundary;
// onMatch is invoked synchronously (within Feed*) on a successful match.
func New(literalTrigger, activeTrigger rune, bufCap int, lookup Lookup, onMatch func(Match)) *FSM {
	return &FSM{
		state:          stateIdle,
		literalTrigger: literalTrigger,
		activeTrigger:  activeTrigger,
		atBoundary:     true,
		buf:            NewTypedBuffer(bufCap),
		lookup:         lookup,
		onMatch:        onMatch,
	}
}

// Suspend and Resume implement the feedback-suppression contract of
// spec.md §4.3/§5: while suspended, fed events are dropped entirely.
func (f *FSM) Suspend() { f.suspended = true }
func (f *FSM) Resume()  { f.suspended = false }
func (f *FSM) Suspended() bool { return f.suspended }

// OnIdleText installs a callback invoked whenever the idle-state typed
// buffer changes. The buffer otherwise has no bearing on shortcut
// recognition (that lives entirely in nameRunes/argsRunes); this is its one
// real consumer, letting a caller surface "what was last typed outside any
// trigger sequence" for doctor-style diagnostics. fn is called from the
// same goroutine that drives Feed*, so it must not block.
func (f *FSM) OnIdleText(fn func(string)) {
	f.onIdleText = fn
}

func (f *FSM) notifyIdleText() {
	if f.onIdleText != nil {
		f.onIdleText(f.buf.String())
	}
}

func (f *FSM) isTrigger(r rune) bool {
	return r == f.literalTrigger || r == f.activeTrigger
}

func isBoundary(r rune) bool {
	if r == '(' || r == ')' || r == '-' || r == '_' {
		return false
	}
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

// FeedRune processes one typed printable rune to completion before the
// caller dequeues the next (spec.md §4.1 ordering guarantee). It is a
// no-op while suspended.
func (f *FSM) FeedRune(r rune) {
	if f.suspended {
		return
	}
	f.dispatch(r, true)
}

// FeedBackspace processes a backspace key event.
func (f *FSM) FeedBackspace() {
	if f.suspended {
		return
	}
	switch f.state {
	case stateIdle:
		f.buf.Backspace()
		f.notifyIdleText()
	case stateCollectingName:
		if len(f.nameRunes) > 0 {
			f.nameRunes = f.nameRunes[:len(f.nameRunes)-1]
		} else {
			f.state = stateIdle
		}
	case stateCollectingArgs:
		if len(f.argsRunes) > 0 {
			f.argsRunes = f.argsRunes[:len(f.argsRunes)-1]
		}
	case stateArmed:
		f.state = stateIdle
	}
}

func (f *FSM) dispatch(r rune, allowReentry bool) {
	switch f.state {
	case stateIdle:
		f.handleIdle(r)
	case stateArmed:
		f.handleArmed(r, allowReentry)
	case stateCollectingName:
		f.handleCollectingName(r, allowReentry)
	case stateCollectingArgs:
		f.handleCollectingArgs(r)
	}
}

func (f *FSM) handleIdle(r rune) {
	if f.atBoundary && f.isTrigger(r) {
		f.state = stateArmed
		f.trigger = r
		f.nameRunes = f.nameRunes[:0]
		f.buf.Reset()
		f.notifyIdleText()
		return
	}
	if isBoundary(r) {
		f.atBoundary = true
		f.buf.Reset()
		f.notifyIdleText()
		return
	}
	f.atBoundary = false
	f.buf.Append(r)
	f.notifyIdleText()
}

func (f *FSM) handleArmed(r rune, allowReentry bool) {
	if isIdentStart(r) {
		f.nameRunes = append(f.nameRunes[:0], r)
		f.state = stateCollectingName
		return
	}
	// Another boundary or trigger: cancel armament (spec.md §4.1 state 2).
	f.state = stateIdle
	f.atBoundary = false
	if allowReentry {
		f.dispatch(r, false)
	}
}

func (f *FSM) handleCollectingName(r rune, allowReentry bool) {
	if isIdentCont(r) {
		f.nameRunes = append(f.nameRunes, r)
		return
	}
	if r == '(' {
		f.state = stateCollectingArgs
		f.parenDepth = 1
		f.argsRunes = f.argsRunes[:0]
		return
	}

	name := string(f.nameRunes)
	trigger := f.trigger
	f.resetToIdle()
	f.tryBareMatch(trigger, name)

	if isBoundary(r) {
		f.atBoundary = true
		return
	}
	f.atBoundary = false
	if allowReentry {
		f.dispatch(r, false)
	}
}

func (f *FSM) handleCollectingArgs(r rune) {
	switch r {
	case '(':
		f.parenDepth++
		f.argsRunes = append(f.argsRunes, r)
	case ')':
		f.parenDepth--
		if f.parenDepth == 0 {
			name := string(f.nameRunes)
			argsText := string(f.argsRunes)
			trigger := f.trigger
			f.resetToIdle()
			f.atBoundary = false
			f.tryParamMatch(trigger, name, argsText)
			return
		}
		f.argsRunes = append(f.argsRunes, r)
	case '\n':
		// Mismatched parenthesization before an obvious boundary cancels
		// the attempt (spec.md §4.1 state 4).
		f.resetToIdle()
		f.atBoundary = true
	default:
		f.argsRunes = append(f.argsRunes, r)
	}
}

func (f *FSM) resetToIdle() {
	f.state = stateIdle
	f.nameRunes = nil
	f.argsRunes = nil
	f.parenDepth = 0
}

func (f *FSM) tryBareMatch(trigger rune, name string) {
	if name == "" || f.lookup == nil {
		return
	}
	entry, ok := f.lookup(name)
	if !ok {
		return
	}
	if entry.Params() != nil {
		// This entry is parameterized; a bare reference to its name
		// without "(...)" does not match (spec.md §3: arity is part of
		// the contract).
		return
	}
	deletionCount := 1 + len([]rune(name))
	f.onMatch(Match{Entry: entry, Trigger: trigger, Args: nil, DeletionCount: deletionCount})
}

func (f *FSM) tryParamMatch(trigger rune, name, argsText string) {
	if name == "" || f.lookup == nil {
		return
	}
	entry, ok := f.lookup(name)
	if !ok {
		return
	}
	params := entry.Params()
	if params == nil {
		return
	}
	args := []string{}
	if argsText != "" {
		args = store.SplitTopLevel(argsText, ',')
	}
	if len(args) != len(params) {
		// ParameterArityMismatch (spec.md §7): recovered locally, no
		// expansion, no user-visible error.
		return
	}
	// trigger + name + '(' + argsText + ')'
	deletionCount := 1 + len([]rune(name)) + 1 + len([]rune(argsText)) + 1
	f.onMatch(Match{Entry: entry, Trigger: trigger, Args: args, DeletionCount: deletionCount})
}
