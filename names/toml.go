package names

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// A symbol file lists names by namespace:
//
//	module = "points"
//
//	[[function]]
//	index = 1
//	name = "main"
//
//	[[field]]
//	owner = 0
//	index = 0
//	name = "x"
type symbolFile struct {
	Module    string        `toml:"module"`
	Globals   []symbolEntry `toml:"global"`
	Functions []symbolEntry `toml:"function"`
	Types     []symbolEntry `toml:"type"`
	Fields    []symbolEntry `toml:"field"`
	Locals    []symbolEntry `toml:"local"`
}

type symbolEntry struct {
	Owner uint32 `toml:"owner"`
	Index uint32 `toml:"index"`
	Name  string `toml:"name"`
}

// LoadTOML reads a symbol file.
func LoadTOML(path string) (*Table, error) {
	var f symbolFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return f.table(path, meta)
}

// DecodeTOML reads a symbol file from r. The name is used in error messages.
func DecodeTOML(r io.Reader, name string) (*Table, error) {
	var f symbolFile
	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	return f.table(name, meta)
}

func (f *symbolFile) table(path string, meta toml.MetaData) (*Table, error) {
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &UndecodedKeysError{Path: path, Keys: keys}
	}

	t := New()
	t.SetModuleName(f.Module)
	for _, group := range []struct {
		kind    Kind
		entries []symbolEntry
	}{
		{KindGlobal, f.Globals},
		{KindFunction, f.Functions},
		{KindType, f.Types},
		{KindField, f.Fields},
		{KindLocal, f.Locals},
	} {
		for _, e := range group.entries {
			if e.Name == "" {
				return nil, fmt.Errorf("%s: %s %d has no name", path, group.kind, e.Index)
			}
			if err := t.Set(group.kind, e.Owner, e.Index, e.Name); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}
