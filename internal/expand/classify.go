// Package expand resolves a matched snippet entry to its final expansion
// text, per spec.md §4.2: script execution, built-in transforms,
// parameter substitution, or literal insertion.
package expand

import "strings"

// BodyKind tags how an entry's body should be expanded. Expand calls
// Classify on every active-trigger expansion; the result is not cached
// beside the entry or in the store snapshot.
type BodyKind int

const (
	KindLiteral BodyKind = iota
	KindParameterized
	KindBuiltin
	KindScript
)

// Classify determines body's BodyKind. Per spec.md §9's resolution of the
// trigger-vs-dispatch open question, classification is purely a function
// of the body text — the trigger character only controls whether
// classification-based dispatch happens at all (":" always inserts the
// raw body verbatim; "!" runs this classification).
func Classify(body string) BodyKind {
	if strings.HasPrefix(body, "#!") {
		return KindScript
	}
	trimmed := strings.TrimSpace(body)
	if name, _, ok := splitCall(trimmed); ok && isBuiltinName(name) {
		return KindBuiltin
	}
	if strings.Contains(body, "${") || strings.ContainsRune(body, '$') {
		return KindParameterized
	}
	return KindLiteral
}

// splitCall recognizes "name(args)" called with balanced, entirely
// wrapping parentheses, returning the args substring (without the
// parentheses) when ok.
func splitCall(s string) (name, args string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	name = s[:open]
	for _, r := range name {
		if !isIdentRune(r) {
			return "", "", false
		}
	}
	args = s[open+1 : len(s)-1]
	return name, args, true
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}
