package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmback/wasmback/config"
	"github.com/wasmback/wasmback/internal/wasmtest"
	"github.com/wasmback/wasmback/names"
)

func writeModule(t *testing.T, dir string) string {
	path := filepath.Join(dir, "points.wasm")
	require.NoError(t, os.WriteFile(path, wasmtest.PointModule(), 0o644))
	return path
}

func execute(t *testing.T, cfg config.Config, args ...string) (string, error) {
	cmd := Command(func() config.Config { return cfg })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDump(t *testing.T) {
	path := writeModule(t, t.TempDir())

	out, err := execute(t, config.Default(), path)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "(module $points", lines[0])
	assert.Contains(t, out, `(import "env" "log" (func (; 0 ;) $env.log (type 1)`)
	assert.Contains(t, out, `(import "env" "counter" (global (; 0 ;) $env.counter (mut i32)))`)
	assert.Contains(t, out, `(export "main" (func (; 1 ;) $main))`)
}

func TestDumpAddressesFromConfig(t *testing.T) {
	path := writeModule(t, t.TempDir())

	cfg := config.Default()
	cfg.Dump.Addresses = true
	cfg.Dump.AddressOffset = 0x100

	out, err := execute(t, cfg, path)
	require.NoError(t, err)
	assert.Equal(t, "  (;@00010b;) (type (; 0 ;) $Point (struct (field (; 0 ;) $x i32) (field (; 1 ;) $y (mut i32))))",
		strings.Split(out, "\n")[1])

	out, err = execute(t, cfg, "--address-offset", "0", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(;@00000b;) (type")
}

func TestDumpSymbols(t *testing.T) {
	path := writeModule(t, t.TempDir())

	out, err := execute(t, config.Default(), "--symbols", path)
	require.NoError(t, err)

	rows := []string{
		"module,kind,owner,index,name,reference",
		path + ",global,,0,env.counter,(; 0 ;) $env.counter",
		path + ",global,,1,origin,(; 1 ;) $origin",
		path + ",function,,0,env.log,(; 0 ;) $env.log",
		path + ",function,,1,main,(; 1 ;) $main",
		path + ",local,(; 1 ;) $main,0,a,(; 0 ;) $a",
		path + ",local,(; 1 ;) $main,1,p,(; 1 ;) $p",
		path + ",type,,0,Point,(; 0 ;) $Point",
		path + ",field,(; 0 ;) $Point,0,x,(; 0 ;) $x",
		path + ",field,(; 0 ;) $Point,1,y,(; 1 ;) $y",
		path + ",type,,2,Shorts,(; 2 ;) $Shorts",
	}
	assert.Equal(t, strings.Join(rows, "\n")+"\n", out)
}

func TestDumpSymbolsUnnamedFirst(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir)
	empty := filepath.Join(dir, "empty.wasm")
	require.NoError(t, os.WriteFile(empty, wasmtest.Module(), 0o644))

	out, err := execute(t, config.Default(), "--symbols", empty, path, empty)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "module,kind,owner,index,name,reference", lines[0])
	assert.Equal(t, path+",global,,0,env.counter,(; 0 ;) $env.counter", lines[1])
	assert.Equal(t, 1, strings.Count(out, "module,kind"))

	out, err = execute(t, config.Default(), "--symbols", empty)
	require.NoError(t, err)
	assert.Equal(t, "module,kind,owner,index,name,reference\n", out)
}

func TestDumpNamesFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir)

	symbols := filepath.Join(dir, "extra.toml")
	require.NoError(t, os.WriteFile(symbols, []byte(`
type = [{ owner = 0, index = 1, name = "Sig" }]
function = [{ owner = 0, index = 1, name = "entry" }]
`), 0o644))

	out, err := execute(t, config.Default(), "--names", symbols, path)
	require.NoError(t, err)
	assert.Contains(t, out, "(type (; 1 ;) $Sig (func")
	assert.Contains(t, out, "(func (; 1 ;) $entry (type (; 1 ;) $Sig)")
	assert.Contains(t, out, "(type (; 0 ;) $Point")
}

func TestDumpSaveNames(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir)
	snapshot := filepath.Join(dir, "points.msgpack")

	_, err := execute(t, config.Default(), "--save-names", snapshot, path)
	require.NoError(t, err)

	saved, err := names.Load(snapshot)
	require.NoError(t, err)
	name, ok := saved.Field(0, 1)
	assert.True(t, ok)
	assert.Equal(t, "y", name)

	_, err = execute(t, config.Default(), "--save-names", snapshot, path, path)
	assert.Error(t, err)
}

func TestDumpMany(t *testing.T) {
	path := writeModule(t, t.TempDir())

	out, err := execute(t, config.Default(), "--jobs", "4", path, path, path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, ";; "+path+"\n(module $points\n"))
}

func TestDumpErrors(t *testing.T) {
	_, err := execute(t, config.Default())
	assert.Error(t, err)

	_, err = execute(t, config.Default(), filepath.Join(t.TempDir(), "missing.wasm"))
	assert.Error(t, err)
}

func TestDumpValidate(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir)
	_, err := execute(t, config.Default(), "--validate", path)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.wasm")
	require.NoError(t, os.WriteFile(bad, wasmtest.Module(wasmtest.Section(wasmtest.SectionExport, wasmtest.Vec(
		wasmtest.Export("f", 0x00, 4),
	))), 0o644))

	_, err = execute(t, config.Default(), bad)
	require.NoError(t, err)
	_, err = execute(t, config.Default(), "--validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown function 4")
}
