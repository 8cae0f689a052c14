package load

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmback/wasmback/internal/wasmtest"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.wasm")
	require.NoError(t, os.WriteFile(path, wasmtest.PointModule(), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, m.Types)
	assert.Len(t, m.Types.Entries, 5)
}

func TestLoadModuleErrors(t *testing.T) {
	_, err := LoadModule(bytes.NewReader([]byte("(module)")))
	var notBinary *NotBinaryError
	assert.True(t, errors.As(err, &notBinary))

	_, err = LoadModule(bytes.NewReader([]byte{0x00, 0x61}))
	assert.ErrorIs(t, err, io.EOF)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.wasm"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
