package observer

import "testing"

func TestTypedBuffer_AppendAndString(t *testing.T) {
	b := NewTypedBuffer(8)
	for _, r := range "hello" {
		b.Append(r)
	}
	if got := b.String(); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if b.Len() != 5 {
		t.Fatalf("got len %d", b.Len())
	}
}

func TestTypedBuffer_EvictsOldestWhenFull(t *testing.T) {
	b := NewTypedBuffer(3)
	for _, r := range "abcdef" {
		b.Append(r)
	}
	if got := b.String(); got != "def" {
		t.Fatalf("got %q, want %q", got, "def")
	}
}

func TestTypedBuffer_Backspace(t *testing.T) {
	b := NewTypedBuffer(8)
	for _, r := range "abc" {
		b.Append(r)
	}
	b.Backspace()
	if got := b.String(); got != "ab" {
		t.Fatalf("got %q", got)
	}
	b.Backspace()
	b.Backspace()
	b.Backspace() // no-op on empty
	if got := b.String(); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestTypedBuffer_Reset(t *testing.T) {
	b := NewTypedBuffer(8)
	for _, r := range "abc" {
		b.Append(r)
	}
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("got len %d after reset", b.Len())
	}
}

func TestTypedBuffer_PreservesMultiByteRunes(t *testing.T) {
	b := NewTypedBuffer(8)
	for _, r := range "café" {
		b.Append(r)
	}
	if got := b.String(); got != "café" {
		t.Fatalf("got %q", got)
	}
}
