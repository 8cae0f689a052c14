package dump

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/wasmback/wasmback/disasm"
	"github.com/wasmback/wasmback/names"
	"github.com/wasmback/wasmback/wasm"
)

type symbolRow struct {
	Module    string `csv:"module"`
	Kind      string `csv:"kind"`
	Owner     string `csv:"owner,omitempty"`
	Index     uint32 `csv:"index"`
	Name      string `csv:"name"`
	Reference string `csv:"reference"`
}

// writeSymbolHeader writes the CSV header shared by the rows of every module.
func writeSymbolHeader(w io.Writer) error {
	header, err := csvutil.Header(symbolRow{}, "csv")
	if err != nil {
		return err
	}
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// writeSymbols writes a CSV row for every index in the module's index spaces that has a name.
// Rows are written without a header.
func writeSymbols(w io.Writer, path string, m *wasm.Module, provider disasm.NameProvider) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	encoder := csvutil.NewEncoder(csvWriter)
	encoder.AutoHeader = false

	emit := func(kind names.Kind, owner string, index uint32, name string, ok bool) error {
		if !ok {
			return nil
		}
		return encoder.Encode(symbolRow{
			Module:    path,
			Kind:      string(kind),
			Owner:     owner,
			Index:     index,
			Name:      name,
			Reference: disasm.Reference(index, name, ok),
		})
	}

	globals := len(m.ImportedGlobals())
	if m.Global != nil {
		globals += len(m.Global.Globals)
	}
	for i := 0; i < globals; i++ {
		name, ok := provider.Global(uint32(i))
		if err := emit(names.KindGlobal, "", uint32(i), name, ok); err != nil {
			return err
		}
	}

	for i, params := range moduleFunctionParams(m) {
		fn := uint32(i)
		name, ok := provider.Function(fn)
		if err := emit(names.KindFunction, "", fn, name, ok); err != nil {
			return err
		}
		owner := disasm.Reference(fn, name, ok)
		for j := 0; j < params; j++ {
			name, ok := provider.Local(fn, uint32(j))
			if err := emit(names.KindLocal, owner, uint32(j), name, ok); err != nil {
				return err
			}
		}
	}

	if m.Types != nil {
		for _, e := range m.Types.Entries {
			name, ok := provider.Type(e.Index)
			if err := emit(names.KindType, "", e.Index, name, ok); err != nil {
				return err
			}
			owner := disasm.Reference(e.Index, name, ok)
			for j := range e.Composite.Fields {
				name, ok := provider.Field(e.Index, uint32(j))
				if err := emit(names.KindField, owner, uint32(j), name, ok); err != nil {
					return err
				}
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
