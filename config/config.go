// Package config loads wasmback.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file searched for by Find.
const FileName = "wasmback.toml"

type Config struct {
	Dump Dump `toml:"dump"`
	Log  Log  `toml:"log"`
}

// Dump configures the dump command.
type Dump struct {
	AddressOffset int  `toml:"address_offset"`
	Addresses     bool `toml:"addresses"`
	Jobs          int  `toml:"jobs"`

	// Names lists symbol files (.toml or .msgpack). Relative paths are resolved against the
	// directory that holds the configuration file.
	Names []string `toml:"names"`
}

type Log struct {
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{Dump: Dump{Jobs: 1}}
}

// Find searches startDir and its parents for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads the configuration at path. Keys that are not part of Config are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Dump.Jobs < 1 {
		return Config{}, fmt.Errorf("%s: [dump].jobs must be positive", path)
	}

	root := filepath.Dir(path)
	for i, name := range cfg.Dump.Names {
		if !filepath.IsAbs(name) {
			cfg.Dump.Names[i] = filepath.Join(root, filepath.FromSlash(name))
		}
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration found from startDir, or returns Default if there is
// none.
func LoadOrDefault(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), err
	}
	return Load(path)
}
