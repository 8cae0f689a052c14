package names

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmback/wasmback/disasm"
	"github.com/wasmback/wasmback/internal/wasmtest"
	"github.com/wasmback/wasmback/wasm"
)

func pointTable(t *testing.T) *Table {
	m, err := wasm.DecodeModule(bytes.NewReader(wasmtest.PointModule()))
	require.NoError(t, err)
	table, err := FromModule(m)
	require.NoError(t, err)
	return table
}

func TestFromModule(t *testing.T) {
	table := pointTable(t)

	name, ok := table.ModuleName()
	assert.True(t, ok)
	assert.Equal(t, "points", name)

	assert.Equal(t, []Symbol{
		{Kind: KindField, Owner: 0, Index: 0, Name: "x"},
		{Kind: KindField, Owner: 0, Index: 1, Name: "y"},
		{Kind: KindFunction, Index: 0, Name: "env.log"},
		{Kind: KindFunction, Index: 1, Name: "main"},
		{Kind: KindGlobal, Index: 0, Name: "env.counter"},
		{Kind: KindGlobal, Index: 1, Name: "origin"},
		{Kind: KindLocal, Owner: 1, Index: 0, Name: "a"},
		{Kind: KindLocal, Owner: 1, Index: 1, Name: "p"},
		{Kind: KindType, Index: 0, Name: "Point"},
		{Kind: KindType, Index: 2, Name: "Shorts"},
	}, table.Symbols())
}

func TestFromModuleWithoutNames(t *testing.T) {
	raw := wasmtest.Module(
		wasmtest.Section(wasmtest.SectionType, wasmtest.Vec(wasmtest.Func(nil, nil))),
		wasmtest.Section(wasmtest.SectionFunction, wasmtest.Vec(wasmtest.U32(0), wasmtest.U32(0))),
		wasmtest.Section(wasmtest.SectionExport, wasmtest.Vec(wasmtest.Export("_start", 0, 1))),
	)
	m, err := wasm.DecodeModule(bytes.NewReader(raw))
	require.NoError(t, err)

	table, err := FromModule(m)
	require.NoError(t, err)

	_, ok := table.ModuleName()
	assert.False(t, ok)
	_, ok = table.Function(0)
	assert.False(t, ok)
	name, ok := table.Function(1)
	assert.True(t, ok)
	assert.Equal(t, "_start", name)
}

func TestChain(t *testing.T) {
	first := New()
	first.SetType(0, "Vec2")
	first.SetLocal(1, 0, "lhs")

	chain := Chain{first, nil, pointTable(t)}

	name, ok := chain.Type(0)
	assert.True(t, ok)
	assert.Equal(t, "Vec2", name)

	name, ok = chain.Type(2)
	assert.True(t, ok)
	assert.Equal(t, "Shorts", name)

	name, ok = chain.Local(1, 0)
	assert.True(t, ok)
	assert.Equal(t, "lhs", name)

	name, ok = chain.Field(0, 1)
	assert.True(t, ok)
	assert.Equal(t, "y", name)

	name, ok = chain.ModuleName()
	assert.True(t, ok)
	assert.Equal(t, "points", name)

	_, ok = chain.Global(5)
	assert.False(t, ok)

	_, ok = Chain{disasm.NoNames}.ModuleName()
	assert.False(t, ok)

	var missing *Table
	skipping := Chain{missing, pointTable(t)}
	name, ok = skipping.ModuleName()
	assert.True(t, ok)
	assert.Equal(t, "points", name)
	name, ok = skipping.Global(1)
	assert.True(t, ok)
	assert.Equal(t, "origin", name)

	var out disasm.StringWriter
	l := disasm.NewListener(&out, chain)
	require.NoError(t, l.WriteValueType(wasm.CompositeReference{Index: 0}))
	assert.Equal(t, "(ref null (; 0 ;) $Vec2)", out.String())
}

func TestSet(t *testing.T) {
	table := New()
	require.NoError(t, table.Set(KindField, 3, 1, "next"))
	name, ok := table.Field(3, 1)
	assert.True(t, ok)
	assert.Equal(t, "next", name)

	var unknown *UnknownKindError
	assert.ErrorAs(t, table.Set("label", 0, 0, "l"), &unknown)
}

const geometrySymbols = `
module = "geometry"

[[type]]
index = 0
name = "Point"

[[field]]
owner = 0
index = 1
name = "y"

[[function]]
index = 4
name = "distance"

[[local]]
owner = 4
index = 0
name = "from"

[[global]]
index = 2
name = "origin"
`

func TestDecodeTOML(t *testing.T) {
	table, err := DecodeTOML(strings.NewReader(geometrySymbols), "geometry.toml")
	require.NoError(t, err)

	name, _ := table.ModuleName()
	assert.Equal(t, "geometry", name)
	assert.Equal(t, 5, table.Len())

	name, ok := table.Local(4, 0)
	assert.True(t, ok)
	assert.Equal(t, "from", name)

	name, ok = table.Global(2)
	assert.True(t, ok)
	assert.Equal(t, "origin", name)
}

func TestDecodeTOMLErrors(t *testing.T) {
	_, err := DecodeTOML(strings.NewReader("[[type]]\nindex = 0\nlabel = \"x\"\nname = \"T\"\n"), "bad.toml")
	var undecoded *UndecodedKeysError
	require.ErrorAs(t, err, &undecoded)
	assert.Equal(t, []string{"type.label"}, undecoded.Keys)

	_, err = DecodeTOML(strings.NewReader("[[type]]\nindex = 0\n"), "empty.toml")
	assert.EqualError(t, err, "empty.toml: type 0 has no name")

	_, err = DecodeTOML(strings.NewReader("module = "), "broken.toml")
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	table := pointTable(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "points.msgpack")
	require.NoError(t, table.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, table.Symbols(), loaded.Symbols())

	name, ok := loaded.ModuleName()
	assert.True(t, ok)
	assert.Equal(t, "points", name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geometry.toml")
	require.NoError(t, os.WriteFile(path, []byte(geometrySymbols), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	name, ok := table.Function(4)
	assert.True(t, ok)
	assert.Equal(t, "distance", name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "names.txt"))
	assert.Error(t, err)
}

func TestSnapshotVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf))
	raw := buf.Bytes()

	// Bump the version field in place: the first value after the map header and key is the
	// version, encoded as a positive fixint.
	i := bytes.Index(raw, []byte("version"))
	require.NotEqual(t, -1, i)
	raw[i+len("version")] = 0x02

	_, err := Decode(bytes.NewReader(raw))
	var version *SnapshotVersionError
	require.ErrorAs(t, err, &version)
	assert.Equal(t, 2, version.Version)
}
