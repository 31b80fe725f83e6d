package expand

import (
	"context"
	"strings"
	"time"

	"github.com/kir-gadjello/expando/internal/store"
)

// Options carries the per-invocation configuration the engine needs for
// script execution (spec.md §4.2).
type Options struct {
	ScriptDir     string
	ScriptTimeout time.Duration
}

// Result is the output of a successful expansion.
type Result struct {
	Text          string
	DeletionCount int
}

// Expand resolves entry to its final text. trigger distinguishes the
// literal vs active trigger per spec.md §9's resolution: ':' always
// inserts the raw body verbatim regardless of its shape; '!' dispatches
// on Classify's decision order (script, builtin, parameterized, literal).
func Expand(ctx context.Context, entry store.Entry, trigger rune, args []string, deletionCount int, opts Options) (Result, error) {
	if trigger != '!' {
		return Result{Text: entry.Snippet, DeletionCount: deletionCount}, nil
	}

	// Interpolation only applies to the entry's own declared parameters
	// (spec.md §4.2 step 1). A shortcut with no declared parameters passes
	// its body through untouched, so incidental "$NAME"-shaped text (a
	// script's own "$HOME", "$USER", ...) is left for the interpreter to
	// resolve instead of being mistaken for an undefined parameter.
	params := entry.Params()
	body := entry.Snippet
	if len(params) > 0 {
		var err error
		body, err = Substitute(entry.Snippet, params, args)
		if err != nil {
			return Result{}, err
		}
	}

	switch Classify(entry.Snippet) {
	case KindScript:
		// body already has ${name}/$name interpolated textually, per
		// spec.md §4.2 step 1; the shebang line itself is untouched since
		// it never contains a parameter reference.
		out, err := RunScript(ctx, opts.ScriptDir, body, opts.ScriptTimeout)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: out, DeletionCount: deletionCount}, nil

	case KindBuiltin:
		name, callArgs, _ := splitCall(strings.TrimSpace(body))
		out, err := RunBuiltin(name, callArgs)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: out, DeletionCount: deletionCount}, nil

	case KindParameterized:
		return Result{Text: body, DeletionCount: deletionCount}, nil

	default:
		return Result{Text: entry.Snippet, DeletionCount: deletionCount}, nil
	}
}
