// Package config loads expando's YAML configuration file, following the
// same optional-pointer-field, layered-resolution shape the rest of this
// corpus uses for its own config files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is used to build every persisted path: $HOME/.<AppName>/...
const AppName = "expando"

// File is the on-disk shape of $HOME/.expando/config.yaml. Every field is
// optional; zero values fall back to the defaults below.
type File struct {
	LiteralTrigger  *string `yaml:"literal_trigger,omitempty"`
	ActiveTrigger   *string `yaml:"active_trigger,omitempty"`
	PollInterval    *int    `yaml:"poll_interval_ms,omitempty"`
	ScriptTimeout   *int    `yaml:"script_timeout_ms,omitempty"`
	SynthDelayMin   *int    `yaml:"synth_delay_min_ms,omitempty"`
	SynthDelayMax   *int    `yaml:"synth_delay_max_ms,omitempty"`
	APIPortRangeLow *int    `yaml:"api_port_range_low,omitempty"`
	APIPortRangeLen *int    `yaml:"api_port_range_len,omitempty"`
	StopTimeoutMs   *int    `yaml:"stop_timeout_ms,omitempty"`
	Verbose         *bool   `yaml:"verbose,omitempty"`
}

// Resolved is File with every default applied, the value components use.
type Resolved struct {
	LiteralTrigger  rune
	ActiveTrigger   rune
	PollInterval    time.Duration
	ScriptTimeout   time.Duration
	SynthDelayMin   time.Duration
	SynthDelayMax   time.Duration
	APIPortRangeLow int
	APIPortRangeLen int
	StopTimeout     time.Duration
	Verbose         bool
}

func defaults() Resolved {
	return Resolved{
		LiteralTrigger:  ':',
		ActiveTrigger:   '!',
		PollInterval:    2 * time.Second,
		ScriptTimeout:   5 * time.Second,
		SynthDelayMin:   1 * time.Millisecond,
		SynthDelayMax:   5 * time.Millisecond,
		APIPortRangeLow: 41371,
		APIPortRangeLen: 16,
		StopTimeout:     5 * time.Second,
	}
}

// Dir returns $HOME/.expando, creating it if necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, "."+AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create app directory: %w", err)
	}
	return dir, nil
}

// Path returns the path to a named file under the app directory.
func Path(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Load reads $HOME/.expando/config.yaml. A missing file is not an error —
// it yields an empty File, same as the teacher's loadConfig treats a
// missing $HOME/.llmterm/config.yaml.
func Load() (*File, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve merges f over the built-in defaults.
func Resolve(f *File) Resolved {
	r := defaults()
	if f == nil {
		return r
	}
	if f.LiteralTrigger != nil && len(*f.LiteralTrigger) > 0 {
		r.LiteralTrigger = []rune(*f.LiteralTrigger)[0]
	}
	if f.ActiveTrigger != nil && len(*f.ActiveTrigger) > 0 {
		r.ActiveTrigger = []rune(*f.ActiveTrigger)[0]
	}
	if f.PollInterval != nil {
		r.PollInterval = time.Duration(*f.PollInterval) * time.Millisecond
	}
	if f.ScriptTimeout != nil {
		r.ScriptTimeout = time.Duration(*f.ScriptTimeout) * time.Millisecond
	}
	if f.SynthDelayMin != nil {
		r.SynthDelayMin = time.Duration(*f.SynthDelayMin) * time.Millisecond
	}
	if f.SynthDelayMax != nil {
		r.SynthDelayMax = time.Duration(*f.SynthDelayMax) * time.Millisecond
	}
	if f.APIPortRangeLow != nil {
		r.APIPortRangeLow = *f.APIPortRangeLow
	}
	if f.APIPortRangeLen != nil {
		r.APIPortRangeLen = *f.APIPortRangeLen
	}
	if f.StopTimeoutMs != nil {
		r.StopTimeout = time.Duration(*f.StopTimeoutMs) * time.Millisecond
	}
	if f.Verbose != nil {
		r.Verbose = *f.Verbose
	}
	return r
}
