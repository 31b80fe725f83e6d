package expand

import (
	"context"
	"testing"
	"time"

	"github.com/kir-gadjello/expando/internal/store"
)

func TestExpand_LiteralTriggerAlwaysInsertsRawBody(t *testing.T) {
	entry := store.Entry{Shortcut: "greet(name)", Snippet: "Hi, ${name}!"}
	result, err := Expand(context.Background(), entry, ':', []string{"World"}, 3, Options{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Text != "Hi, ${name}!" {
		t.Fatalf("got %q, want the raw body untouched", result.Text)
	}
}

func TestExpand_ActiveTriggerSubstitutesParams(t *testing.T) {
	entry := store.Entry{Shortcut: "greet(name)", Snippet: "Hi, ${name}!"}
	result, err := Expand(context.Background(), entry, '!', []string{"World"}, 3, Options{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Text != "Hi, World!" {
		t.Fatalf("got %q", result.Text)
	}
}

func TestExpand_ActiveTriggerRunsBuiltin(t *testing.T) {
	entry := store.Entry{Shortcut: "shout", Snippet: "uppercase(hello)"}
	result, err := Expand(context.Background(), entry, '!', nil, 1, Options{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Text != "HELLO" {
		t.Fatalf("got %q", result.Text)
	}
}

func TestExpand_ActiveTriggerLiteralBodyPassesThrough(t *testing.T) {
	entry := store.Entry{Shortcut: "sig", Snippet: "Best,\nAlice"}
	result, err := Expand(context.Background(), entry, '!', nil, 1, Options{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Text != "Best,\nAlice" {
		t.Fatalf("got %q", result.Text)
	}
}

func TestExpand_ScriptExecution(t *testing.T) {
	entry := store.Entry{Shortcut: "greetscript", Snippet: "#!/bin/sh\necho hi"}
	result, err := Expand(context.Background(), entry, '!', nil, 1, Options{
		ScriptDir:     t.TempDir(),
		ScriptTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Text != "hi" {
		t.Fatalf("got %q", result.Text)
	}
}

// A script with no declared parameters must not have its own shell
// variables ("$HOME", here "$GREETING") mistaken for undeclared parameter
// references and rejected.
func TestExpand_ScriptWithIncidentalShellVariablePassesThrough(t *testing.T) {
	entry := store.Entry{Shortcut: "envscript", Snippet: "#!/bin/sh\nGREETING=hi\necho $GREETING $HOME"}
	result, err := Expand(context.Background(), entry, '!', nil, 1, Options{
		ScriptDir:     t.TempDir(),
		ScriptTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected non-empty output from the script's own shell expansion")
	}
}
