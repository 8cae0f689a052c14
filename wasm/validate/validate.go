// Package validate checks the index references of a decoded module.
package validate

import (
	"fmt"

	"github.com/wasmback/wasmback/wasm"
)

// Error describes an invalid element. Offset is the element's raw byte offset.
type Error struct {
	Offset  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validate: %s at offset %#x", e.Message, e.Offset)
}

type validator struct {
	module *wasm.Module

	types     uint32
	functions uint32
	globals   uint32
	tables    int
	memories  int
}

// ValidateModule checks that every type, function and global index used by the module's
// declarations is in range, that supertypes precede their subtypes and are not final, and
// that limits are well-formed. Sections kept raw are not checked.
func ValidateModule(m *wasm.Module) error {
	v := validator{module: m}

	if m.Types != nil {
		v.types = uint32(len(m.Types.Entries))
	}
	v.functions = uint32(m.FunctionCount())
	v.globals = uint32(len(m.ImportedGlobals()))
	if m.Global != nil {
		v.globals += uint32(len(m.Global.Globals))
	}
	if m.Import != nil {
		for _, i := range m.Import.Entries {
			switch i.Type.(type) {
			case wasm.TableImport:
				v.tables++
			case wasm.MemoryImport:
				v.memories++
			}
		}
	}

	return v.validateModule()
}

func (v *validator) validateModule() error {
	if err := v.validateTypes(); err != nil {
		return err
	}
	if err := v.validateImports(); err != nil {
		return err
	}
	if err := v.validateFunctions(); err != nil {
		return err
	}
	if err := v.validateGlobals(); err != nil {
		return err
	}
	return v.validateExports()
}

func (v *validator) invalid(offset int, format string, args ...interface{}) error {
	return &Error{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func (v *validator) validateValueType(offset int, t wasm.ValueType) error {
	if ref, ok := t.(wasm.CompositeReference); ok && ref.Index >= v.types {
		return v.invalid(offset, "unknown type %d", ref.Index)
	}
	return nil
}

func (v *validator) validateTypes() error {
	if v.module.Types == nil {
		return nil
	}

	for _, e := range v.module.Types.Entries {
		for _, super := range e.Supertypes {
			if super >= e.Index {
				return v.invalid(e.Offset, "supertype %d of type %d is not declared before it", super, e.Index)
			}
			if s, _ := v.module.Type(super); s.Final {
				return v.invalid(e.Offset, "type %d extends final type %d", e.Index, super)
			}
		}

		c := &e.Composite
		for _, t := range c.Params {
			if err := v.validateValueType(e.Offset, t); err != nil {
				return err
			}
		}
		for _, t := range c.Results {
			if err := v.validateValueType(e.Offset, t); err != nil {
				return err
			}
		}
		for _, f := range c.Fields {
			if err := v.validateValueType(e.Offset, wasm.AsUnpacked(f.Type)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) validateFunctionType(offset int, typeidx uint32) error {
	t, ok := v.module.Type(typeidx)
	if !ok {
		return v.invalid(offset, "unknown type %d", typeidx)
	}
	if t.Composite.Kind != wasm.CompositeFunc {
		return v.invalid(offset, "type %d is not a function type", typeidx)
	}
	return nil
}

func (v *validator) validateLimits(offset int, limits wasm.Limits, max uint64) error {
	if limits.HasMaximum() && limits.Initial > limits.Maximum {
		return v.invalid(offset, "size minimum must not be greater than maximum")
	}
	if max != 0 && (limits.Initial > max || limits.HasMaximum() && limits.Maximum > max) {
		return v.invalid(offset, "memory size must be at most %d pages (4GiB)", max)
	}
	return nil
}

func (v *validator) validateImports() error {
	if v.module.Import == nil {
		return nil
	}
	for _, i := range v.module.Import.Entries {
		var err error
		switch t := i.Type.(type) {
		case wasm.FuncImport:
			err = v.validateFunctionType(i.Offset, t.Type)
		case wasm.TagImport:
			err = v.validateFunctionType(i.Offset, t.Type)
		case wasm.TableImport:
			if err = v.validateLimits(i.Offset, t.Type.Limits, 0); err == nil {
				err = v.validateValueType(i.Offset, t.Type.ElementType)
			}
		case wasm.MemoryImport:
			err = v.validateLimits(i.Offset, t.Type, 65536)
		case wasm.GlobalVarImport:
			err = v.validateValueType(i.Offset, t.Type.Type)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateFunctions() error {
	if v.module.Function == nil {
		return nil
	}
	for _, f := range v.module.Function.Entries {
		if err := v.validateFunctionType(f.Offset, f.Type); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateGlobals() error {
	if v.module.Global == nil {
		return nil
	}
	for _, g := range v.module.Global.Globals {
		if err := v.validateValueType(g.Offset, g.Type.Type); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateExports() error {
	if v.module.Export == nil {
		return nil
	}
	for _, e := range v.module.Export.Entries {
		switch e.Kind {
		case wasm.ExternalFunction:
			if e.Index >= v.functions {
				return v.invalid(e.Offset, "unknown function %d", e.Index)
			}
		case wasm.ExternalGlobal:
			if e.Index >= v.globals {
				return v.invalid(e.Offset, "unknown global %d", e.Index)
			}
		}
	}
	return nil
}
