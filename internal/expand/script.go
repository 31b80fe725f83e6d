package expand

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// RunScript materializes body (already parameter-substituted) to a
// temporary file under dir and executes it with the interpreter named on
// its shebang line, collecting stdout and trimming a single trailing
// newline (spec.md §4.2 script contract). Grounded on the teacher's
// exec.Command/cmd.Run() usage in shell_assistant.go's
// executeShellCommand, generalized to resolve the interpreter from the
// body itself instead of always invoking the detected login shell.
//
// Per spec.md §9's design note, the body is written to disk and the
// interpreter invoked on the file path — arguments are never concatenated
// into the shebang line or the command string.
func RunScript(ctx context.Context, dir, body string, timeout time.Duration) (string, error) {
	interpreter, interpArgs, err := parseShebang(body)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("expand: create script dir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "expando-script-*")
	if err != nil {
		return "", fmt.Errorf("expand: create temp script: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return "", fmt.Errorf("expand: write temp script: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("expand: close temp script: %w", err)
	}
	if err := os.Chmod(path, 0o700); err != nil {
		return "", fmt.Errorf("expand: chmod temp script: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, interpArgs...), path)
	cmd := exec.CommandContext(runCtx, interpreter, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("expand: script timed out after %s", timeout)
		}
		return "", fmt.Errorf("expand: script execution failed: %w (stderr: %s)", err, stderr.String())
	}

	out := stdout.String()
	out = strings.TrimSuffix(out, "\n")
	return out, nil
}

// parseShebang extracts the interpreter command and leading arguments
// from body's first line, falling back to /bin/sh when the interpreter
// field is empty — matching shell_detection.go's OS-appropriate fallback
// shape.
func parseShebang(body string) (interpreter string, args []string, err error) {
	if !strings.HasPrefix(body, "#!") {
		return "", nil, fmt.Errorf("expand: script body missing shebang line")
	}
	line := body[2:]
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "/bin/sh", nil, nil
	}
	interpreter = filepath.Clean(fields[0])
	return interpreter, fields[1:], nil
}
