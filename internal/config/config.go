// Package config reads lox.toml project manifests.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lox/internal/vm"
)

const FileName = "lox.toml"

const defaultEntry = "main.lox"

type Manifest struct {
	Name  string   `toml:"name"`
	Entry string   `toml:"entry"`
	VM    VMConfig `toml:"vm"`

	// Dir is the absolute directory holding the manifest.
	Dir string `toml:"-"`
}

type VMConfig struct {
	Trace     bool  `toml:"trace"`
	Dump      bool  `toml:"dump"`
	MaxMemory int64 `toml:"max_memory"`
	MaxSteps  int64 `toml:"max_steps"`
}

// LoadManifest decodes the manifest at path. Unknown keys are rejected.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := &Manifest{}
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown key(s): %s", path, strings.Join(keys, ", "))
	}
	if m.VM.MaxMemory < 0 || m.VM.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: vm limits must not be negative", path)
	}

	if m.Entry == "" {
		m.Entry = defaultEntry
	}
	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return m, nil
}

// Load reads lox.toml from dir.
func Load(dir string) (*Manifest, error) {
	return LoadManifest(filepath.Join(dir, FileName))
}

// FindAndLoad walks up from start looking for lox.toml. It returns nil and
// no error when none exists.
func FindAndLoad(start string) (*Manifest, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadManifest(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Save writes m as lox.toml in dir, refusing to overwrite an existing one.
func Save(dir string, m *Manifest) error {
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}

// EntryPath resolves the entry script against the manifest directory.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Entry) {
		return m.Entry
	}
	return filepath.Join(m.Dir, m.Entry)
}

// Apply copies the manifest's VM settings into opts. Flags set on the
// command line should be applied afterwards so they win.
func (m *Manifest) Apply(opts *vm.Options) {
	opts.Trace = opts.Trace || m.VM.Trace
	opts.DumpCode = opts.DumpCode || m.VM.Dump
	if m.VM.MaxMemory > 0 {
		opts.MaxMemory = m.VM.MaxMemory
	}
	if m.VM.MaxSteps > 0 {
		opts.MaxSteps = m.VM.MaxSteps
	}
}
