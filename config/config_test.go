package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, text string) string {
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, `
[dump]
address_offset = 256
addresses = true
jobs = 4
names = ["symbols/runtime.toml", "/abs/names.msgpack"]

[log]
verbose = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Dump: Dump{
			AddressOffset: 256,
			Addresses:     true,
			Jobs:          4,
			Names:         []string{filepath.Join(dir, "symbols", "runtime.toml"), "/abs/names.msgpack"},
		},
		Log: Log{Verbose: true},
	}, cfg)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(write(t, t.TempDir(), "[log]\nverbose = false\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	for name, text := range map[string]string{
		"unknown key": "[dump]\ncolour = true\n",
		"bad jobs":    "[dump]\njobs = 0\n",
		"syntax":      "[dump\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, t.TempDir(), text))
			assert.Error(t, err)
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, ok, err := Find(nested)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, path, found)

	cfg, err := LoadOrDefault(nested)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
