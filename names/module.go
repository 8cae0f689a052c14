package names

import (
	"errors"

	"github.com/wasmback/wasmback/wasm"
)

// FromModule collects the names recorded in a module's name section. Imported functions and
// globals without a name are named after their import ("module.field"), and exported ones
// after their export.
func FromModule(m *wasm.Module) (*Table, error) {
	t := New()

	section, err := m.Names()
	var missing wasm.MissingSectionError
	switch {
	case errors.As(err, &missing):
		section = &wasm.NameSection{}
	case err != nil:
		return nil, err
	}

	if name, ok := section.ModuleName(); ok {
		t.SetModuleName(name)
	}
	for _, n := range section.Map(wasm.NameFunction) {
		t.SetFunction(n.Index, n.Name)
	}
	for _, n := range section.Map(wasm.NameTypes) {
		t.SetType(n.Index, n.Name)
	}
	for _, n := range section.Map(wasm.NameGlobal) {
		t.SetGlobal(n.Index, n.Name)
	}
	for _, owner := range section.IndirectMap(wasm.NameLocal) {
		for _, n := range owner.Names {
			t.SetLocal(owner.Index, n.Index, n.Name)
		}
	}
	for _, owner := range section.IndirectMap(wasm.NameField) {
		for _, n := range owner.Names {
			t.SetField(owner.Index, n.Index, n.Name)
		}
	}

	for i, e := range m.ImportedFunctions() {
		if _, ok := t.functions[uint32(i)]; !ok {
			t.SetFunction(uint32(i), e.ModuleName+"."+e.FieldName)
		}
	}
	for i, e := range m.ImportedGlobals() {
		if _, ok := t.globals[uint32(i)]; !ok {
			t.SetGlobal(uint32(i), e.ModuleName+"."+e.FieldName)
		}
	}
	if m.Export != nil {
		for _, e := range m.Export.Entries {
			switch e.Kind {
			case wasm.ExternalFunction:
				if _, ok := t.functions[e.Index]; !ok {
					t.SetFunction(e.Index, e.FieldStr)
				}
			case wasm.ExternalGlobal:
				if _, ok := t.globals[e.Index]; !ok {
					t.SetGlobal(e.Index, e.FieldStr)
				}
			}
		}
	}

	return t, nil
}
