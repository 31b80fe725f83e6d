package expand

import (
	"context"
	"testing"
	"time"
)

func TestRunScript_MissingShebangErrors(t *testing.T) {
	_, err := RunScript(context.Background(), t.TempDir(), "echo hi", time.Second)
	if err == nil {
		t.Fatal("expected an error for a body without a shebang line")
	}
}

func TestRunScript_CapturesStdoutTrimmed(t *testing.T) {
	out, err := RunScript(context.Background(), t.TempDir(), "#!/bin/sh\necho -n hello\n", time.Second)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if out != "hello" {
		t.Fatalf("got %q", out)
	}
}

func TestRunScript_TimesOut(t *testing.T) {
	_, err := RunScript(context.Background(), t.TempDir(), "#!/bin/sh\nsleep 5\n", 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}
