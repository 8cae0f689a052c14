package disasm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmback/wasmback/internal/wasmtest"
	"github.com/wasmback/wasmback/wasm"
)

func pointNames() *testNames {
	return &testNames{
		module:    "points",
		globals:   map[uint32]string{1: "origin"},
		functions: map[uint32]string{1: "main"},
		types:     map[uint32]string{0: "Point", 2: "Shorts"},
		fields:    map[ownedName]string{{0, 0}: "x", {0, 1}: "y"},
		locals:    map[ownedName]string{{1, 0}: "a", {1, 1}: "p"},
	}
}

func TestWriteModule(t *testing.T) {
	m, err := wasm.DecodeModule(bytes.NewReader(wasmtest.PointModule()))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteModule(&buf, m, ModuleOptions{Names: pointNames()}))

	expected := `(module $points
  (type (; 0 ;) $Point (struct (field (; 0 ;) $x i32) (field (; 1 ;) $y (mut i32))))
  (type 1 (func (param i32 (ref null (; 0 ;) $Point)) (result f64)))
  (type (; 2 ;) $Shorts (array (mut i16)))
  (rec
    (type 3 (sub (struct (field 0 i8))))
    (type 4 (sub final 3 (struct (field 0 i8) (field 1 anyref)))))
  (import "env" "log" (func 0 (type 1) (param 0 i32) (param 1 (ref null (; 0 ;) $Point)) (result f64)))
  (import "env" "counter" (global 0 (mut i32)))
  (func (; 1 ;) $main (type 1) (param (; 0 ;) $a i32) (param (; 1 ;) $p (ref null (; 0 ;) $Point)) (result f64))
  (global (; 1 ;) $origin (ref null (; 0 ;) $Point))
  (export "main" (func (; 1 ;) $main)))
`
	assert.Equal(t, expected, buf.String())
}

func TestWriteModuleAddresses(t *testing.T) {
	m, err := wasm.DecodeModule(bytes.NewReader(wasmtest.PointModule()))
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewModuleWriter(&buf, m, ModuleOptions{AddressOffset: 0x100, Addresses: true})
	require.NoError(t, w.WriteModule())

	lines := strings.Split(buf.String(), "\n")
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "(module", lines[0])
	// The type section payload starts after the 8-byte header and a 2-byte section header;
	// its first entry follows the 1-byte count.
	assert.Equal(t, "  (;@00010b;) (type 0 (struct (field 0 i32) (field 1 (mut i32))))", lines[1])
	for _, line := range lines[1 : len(lines)-1] {
		assert.True(t, strings.HasPrefix(strings.TrimLeft(line, " "), "(;@"), line)
	}

	last := m.Export.Entries[0].Offset + 0x100
	assert.Equal(t, last, w.CurrentAddress())
}

func TestWriteModuleInvalidType(t *testing.T) {
	m := &wasm.Module{
		Global: &wasm.SectionGlobals{Globals: []wasm.GlobalEntry{
			{Type: wasm.GlobalType{Type: wasm.SpecialReference{Kind: 42}}},
		}},
	}
	err := WriteModule(&bytes.Buffer{}, m, ModuleOptions{})
	var invalid *InvalidReferenceKindError
	assert.ErrorAs(t, err, &invalid)
}

type failingWriter struct{}

var errSink = errors.New("sink failed")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errSink
}

func TestWriteModuleSinkError(t *testing.T) {
	m, err := wasm.DecodeModule(bytes.NewReader(wasmtest.PointModule()))
	require.NoError(t, err)

	err = WriteModule(failingWriter{}, m, ModuleOptions{})
	assert.ErrorIs(t, err, errSink)
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf)
	w.Write("(a")
	w.Indent()
	w.Newline()
	w.Print("(b %d)", 1)
	w.Dedent()
	w.Dedent()
	w.Newline()
	w.Write(")")
	require.NoError(t, w.Flush())
	assert.Equal(t, "(a\n  (b 1)\n)", buf.String())
	assert.NoError(t, w.Err())
}
