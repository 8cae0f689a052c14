package names

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

type snapshot struct {
	Version int            `msgpack:"version"`
	Module  string         `msgpack:"module"`
	Symbols []snapshotName `msgpack:"symbols"`
}

type snapshotName struct {
	Kind  string `msgpack:"kind"`
	Owner uint32 `msgpack:"owner"`
	Index uint32 `msgpack:"index"`
	Name  string `msgpack:"name"`
}

// Encode writes a binary snapshot of the table to w.
func (t *Table) Encode(w io.Writer) error {
	s := snapshot{Version: snapshotVersion, Module: t.module}
	for _, sym := range t.Symbols() {
		s.Symbols = append(s.Symbols, snapshotName{
			Kind:  string(sym.Kind),
			Owner: sym.Owner,
			Index: sym.Index,
			Name:  sym.Name,
		})
	}
	return msgpack.NewEncoder(w).Encode(&s)
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (*Table, error) {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("names: decoding snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, &SnapshotVersionError{Version: s.Version}
	}

	t := New()
	t.SetModuleName(s.Module)
	for _, sym := range s.Symbols {
		if err := t.Set(Kind(sym.Kind), sym.Owner, sym.Index, sym.Name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Save writes a snapshot to path, replacing any existing file.
func (t *Table) Save(path string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "names-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = t.Encode(f); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load reads a snapshot from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// LoadFile reads a symbol file or a snapshot, depending on its extension.
func LoadFile(path string) (*Table, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return LoadTOML(path)
	case ".msgpack", ".mp":
		return Load(path)
	default:
		return nil, fmt.Errorf("names: %s: unknown symbol file type", path)
	}
}
