package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expando.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func TestStore_AddGetList(t *testing.T) {
	st := openTemp(t)

	entry, err := st.Add("sig", "Best,\nAlice")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if entry.Shortcut != "sig" {
		t.Fatalf("got shortcut %q", entry.Shortcut)
	}

	got, ok := st.Get("sig")
	if !ok {
		t.Fatal("expected Get to find the entry")
	}
	if got.Snippet != "Best,\nAlice" {
		t.Fatalf("got snippet %q", got.Snippet)
	}

	if len(st.List()) != 1 {
		t.Fatalf("got %d entries, want 1", len(st.List()))
	}
}

func TestStore_AddCollision(t *testing.T) {
	st := openTemp(t)
	if _, err := st.Add("sig", "one"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := st.Add("sig", "two")
	if !errors.Is(err, ErrCollision) {
		t.Fatalf("got error %v, want ErrCollision", err)
	}
}

func TestStore_UpdateNotFound(t *testing.T) {
	st := openTemp(t)
	_, err := st.Update("nope", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateAdvancesTimestamp(t *testing.T) {
	st := openTemp(t)
	first, _ := st.Add("sig", "one")
	second, err := st.Update("sig", "two")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !second.Timestamp.After(first.Timestamp) {
		t.Fatalf("expected updated timestamp to advance, got %v then %v", first.Timestamp, second.Timestamp)
	}
	if second.Snippet != "two" {
		t.Fatalf("got snippet %q", second.Snippet)
	}
}

func TestStore_DeleteNotFound(t *testing.T) {
	st := openTemp(t)
	if err := st.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteThenGet(t *testing.T) {
	st := openTemp(t)
	st.Add("sig", "one")
	if err := st.Delete("sig"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := st.Get("sig"); ok {
		t.Fatal("expected entry to be gone after Delete")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expando.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := st.Add("sig", "Best,\nAlice"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	entry, ok := reopened.Get("sig")
	if !ok {
		t.Fatal("expected reopened store to see the persisted entry")
	}
	if entry.Snippet != "Best,\nAlice" {
		t.Fatalf("got snippet %q", entry.Snippet)
	}
}

func TestEntry_NameAndParams(t *testing.T) {
	bare := Entry{Shortcut: "sig"}
	if bare.Name() != "sig" {
		t.Fatalf("got name %q", bare.Name())
	}
	if bare.Params() != nil {
		t.Fatalf("expected nil params for bare shortcut, got %v", bare.Params())
	}

	param := Entry{Shortcut: "greet(first, last)"}
	if param.Name() != "greet" {
		t.Fatalf("got name %q", param.Name())
	}
	if got := param.Params(); len(got) != 2 || got[0] != "first" || got[1] != "last" {
		t.Fatalf("got params %v", got)
	}

	zero := Entry{Shortcut: "ping()"}
	if got := zero.Params(); len(got) != 0 {
		t.Fatalf("got params %v, want empty slice", got)
	}
}

func TestValidShortcutName(t *testing.T) {
	cases := map[string]bool{
		"sig":      true,
		"greet-1":  true,
		"_private": true,
		"1sig":     false,
		"":         false,
		"has space": false,
	}
	for name, want := range cases {
		if got := ValidShortcutName(name); got != want {
			t.Errorf("ValidShortcutName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSplitTopLevel(t *testing.T) {
	got := SplitTopLevel("a, f(b,c), d", ',')
	want := []string{"a", " f(b,c)", " d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
