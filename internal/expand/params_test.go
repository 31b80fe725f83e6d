package expand

import (
	"errors"
	"testing"
)

func TestSubstitute_BracedAndBareReferences(t *testing.T) {
	got, err := Substitute("Hi, ${name}! Regards, $from", []string{"name", "from"}, []string{"World", "Alice"})
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	want := "Hi, World! Regards, Alice"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSubstitute_UndefinedReferenceErrors(t *testing.T) {
	_, err := Substitute("Hi, ${missing}!", nil, nil)
	if !errors.Is(err, ErrUndefinedParam) {
		t.Fatalf("got %v, want ErrUndefinedParam", err)
	}
}

func TestSubstitute_NoReferencesIsIdentity(t *testing.T) {
	got, err := Substitute("plain text, no params", nil, nil)
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	if got != "plain text, no params" {
		t.Fatalf("got %q", got)
	}
}
