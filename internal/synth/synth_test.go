package synth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeEmitter struct {
	events []string
	failOn int // index (1-based count of calls) to fail at, 0 = never
	calls  int
}

func (f *fakeEmitter) Backspace() error {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return errors.New("boom")
	}
	f.events = append(f.events, "bs")
	return nil
}

func (f *fakeEmitter) Rune(r rune) error {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return errors.New("boom")
	}
	f.events = append(f.events, string(r))
	return nil
}

func (f *fakeEmitter) Close() error { return nil }

func TestSynthesizer_ReplaceOrdersBackspacesBeforeText(t *testing.T) {
	e := &fakeEmitter{}
	s := New(e, 0, 0, nil, nil)

	if err := s.Replace(context.Background(), 3, "hi"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	want := []string{"bs", "bs", "bs", "h", "i"}
	if len(e.events) != len(want) {
		t.Fatalf("got %v, want %v", e.events, want)
	}
	for i := range want {
		if e.events[i] != want[i] {
			t.Fatalf("got %v, want %v", e.events, want)
		}
	}
}

func TestSynthesizer_SuspendResumeCalledAroundEmission(t *testing.T) {
	e := &fakeEmitter{}
	var order []string
	suspend := func() { order = append(order, "suspend") }
	resume := func() { order = append(order, "resume") }
	s := New(e, 0, 0, suspend, resume)

	if err := s.Replace(context.Background(), 0, "x"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(order) != 2 || order[0] != "suspend" || order[1] != "resume" {
		t.Fatalf("got %v", order)
	}
}

func TestSynthesizer_ResumeCalledEvenOnEmitterError(t *testing.T) {
	e := &fakeEmitter{failOn: 1}
	var resumed bool
	s := New(e, 0, 0, nil, func() { resumed = true })

	if err := s.Replace(context.Background(), 1, ""); err == nil {
		t.Fatal("expected the emitter error to propagate")
	}
	if !resumed {
		t.Fatal("expected resume to run even after an emitter error")
	}
}

func TestSynthesizer_AbortsOnContextCancellation(t *testing.T) {
	e := &fakeEmitter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(e, 0, 0, nil, nil)
	if err := s.Replace(ctx, 2, "text"); err == nil {
		t.Fatal("expected Replace to abort on an already-canceled context")
	}
}

func TestSynthesizer_PacingRespectsDelay(t *testing.T) {
	e := &fakeEmitter{}
	s := New(e, 5*time.Millisecond, 5*time.Millisecond, nil, nil)

	start := time.Now()
	if err := s.Replace(context.Background(), 0, "ab"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 8*time.Millisecond {
		t.Fatalf("expected pacing delay between emissions, elapsed %v", elapsed)
	}
}
