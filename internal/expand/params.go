package expand

import (
	"fmt"
	"regexp"
)

// paramRefPattern matches both ${name} and bare $name references.
var paramRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// ErrUndefinedParam is returned when body references a parameter name not
// present in the bound values (spec.md §4.2: "undefined references abort
// the expansion").
var ErrUndefinedParam = fmt.Errorf("expand: undefined parameter reference")

// Substitute replaces every ${name}/$name reference in body with its
// bound value. Binding is positional: params[i] is the declared name,
// values[i] its bound argument text (spec.md §4.2 parameter binding
// rules).
func Substitute(body string, params, values []string) (string, error) {
	bound := make(map[string]string, len(params))
	for i, p := range params {
		if i < len(values) {
			bound[p] = values[i]
		}
	}

	var firstErr error
	result := paramRefPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := paramRefPattern.FindStringSubmatch(match)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		val, ok := bound[name]
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s", ErrUndefinedParam, name)
			}
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}
