package expand

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/kir-gadjello/expando/internal/store"
)

var builtinNames = map[string]bool{
	"uppercase":      true,
	"lowercase":      true,
	"titlecase":      true,
	"indent":         true,
	"csv2md":         true,
	"extract-emails": true,
	"wordcount":      true,
	"lorem":          true,
	"now":            true,
	"today":          true,
}

func isBuiltinName(name string) bool {
	return builtinNames[name]
}

// ErrUnknownBuiltin is returned by RunBuiltin for a call whose name isn't
// recognized — reachable only if Classify and RunBuiltin's name tables
// ever diverge, since Classify already gates on isBuiltinName.
var ErrUnknownBuiltin = fmt.Errorf("expand: unknown built-in transform")

// RunBuiltin evaluates a "name(args)" built-in call, where args is the
// already-substituted, raw text between the outer parentheses (spec.md
// §4.2 built-in transform contracts).
func RunBuiltin(name, args string) (string, error) {
	switch name {
	case "uppercase":
		return strings.ToUpper(args), nil
	case "lowercase":
		return strings.ToLower(args), nil
	case "titlecase":
		return titleCase(args), nil
	case "indent":
		return indent(args)
	case "csv2md":
		return csv2md(args)
	case "extract-emails":
		return extractEmails(args), nil
	case "wordcount":
		return strconv.Itoa(len(strings.Fields(args))), nil
	case "lorem":
		return lorem(args)
	case "now":
		return time.Now().Format("15:04:05"), nil
	case "today":
		return time.Now().Format("2006-01-02"), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownBuiltin, name)
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		if len(runes) == 0 {
			continue
		}
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func indent(args string) (string, error) {
	parts := store.SplitTopLevel(args, ',')
	if len(parts) < 2 {
		return "", fmt.Errorf("expand: indent(n,s) requires two arguments")
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || n < 0 {
		return "", fmt.Errorf("expand: indent: n must be a non-negative integer: %w", err)
	}
	s := strings.Join(parts[1:], ",")
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n"), nil
}

// csv2md emits a pipe-delimited Markdown table. The header count K is
// determined either by an explicit leading integer argument, or by the
// divisibility heuristic documented in spec.md §4.2 and flagged as an
// open question in spec.md §9 — we implement exactly those two documented
// paths and return an error rather than guess further when both fail.
func csv2md(args string) (string, error) {
	tokens := store.SplitTopLevel(args, ',')
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	if len(tokens) == 0 {
		return "", fmt.Errorf("expand: csv2md requires at least header tokens")
	}

	k := 0
	rest := tokens
	if n, err := strconv.Atoi(tokens[0]); err == nil && n >= 2 && n <= len(tokens)-1 {
		k = n
		rest = tokens[1:]
	} else {
		remaining := len(tokens)
		found := false
		for divisor := 2; divisor <= remaining; divisor++ {
			if remaining%divisor == 0 && remaining/divisor >= 1 {
				k = divisor
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("expand: csv2md: ambiguous header count for %d tokens", remaining)
		}
	}

	if k < 2 || len(rest)%k != 0 {
		return "", fmt.Errorf("expand: csv2md: %d data tokens do not divide evenly by %d headers", len(rest), k)
	}

	headers := rest[:k]
	data := rest[k:]

	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(strings.Join(headers, " | "))
	b.WriteString(" |\n|")
	for range headers {
		b.WriteString(" --- |")
	}
	for i := 0; i < len(data); i += k {
		row := data[i : i+k]
		b.WriteString("\n| ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString(" |")
	}
	return b.String(), nil
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

func extractEmails(s string) string {
	matches := emailPattern.FindAllString(s, -1)
	return strings.Join(matches, ", ")
}

var loremWords = strings.Fields(
	`lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod
	 tempor incididunt ut labore et dolore magna aliqua ut enim ad minim
	 veniam quis nostrud exercitation ullamco laboris nisi ut aliquip ex
	 ea commodo consequat`,
)

func lorem(args string) (string, error) {
	n := 20
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		parsed, err := strconv.Atoi(trimmed)
		if err != nil || parsed < 0 {
			return "", fmt.Errorf("expand: lorem(n): n must be a non-negative integer: %w", err)
		}
		n = parsed
	}
	words := make([]string, n)
	for i := 0; i < n; i++ {
		words[i] = loremWords[i%len(loremWords)]
	}
	return strings.Join(words, " "), nil
}
