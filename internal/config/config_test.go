package config

import "testing"

func TestResolve_Defaults(t *testing.T) {
	r := Resolve(nil)
	if r.LiteralTrigger != ':' || r.ActiveTrigger != '!' {
		t.Fatalf("got triggers %q/%q", r.LiteralTrigger, r.ActiveTrigger)
	}
	if r.APIPortRangeLow != 41371 || r.APIPortRangeLen != 16 {
		t.Fatalf("got port range [%d,+%d)", r.APIPortRangeLow, r.APIPortRangeLen)
	}
}

func TestResolve_OverridesDefaults(t *testing.T) {
	literal := "#"
	pollMs := 500
	f := &File{
		LiteralTrigger: &literal,
		PollInterval:   &pollMs,
	}
	r := Resolve(f)
	if r.LiteralTrigger != '#' {
		t.Fatalf("got literal trigger %q", r.LiteralTrigger)
	}
	if r.ActiveTrigger != '!' {
		t.Fatalf("expected active trigger to keep its default, got %q", r.ActiveTrigger)
	}
	if r.PollInterval.Milliseconds() != 500 {
		t.Fatalf("got poll interval %v", r.PollInterval)
	}
}

func TestLoad_MissingFileYieldsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	f, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.LiteralTrigger != nil {
		t.Fatalf("expected an empty File for a missing config, got %+v", f)
	}
}
