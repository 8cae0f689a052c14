package disasm

import (
	"io"

	"github.com/wasmback/wasmback/wasm"
)

// ModuleOptions configures a ModuleWriter.
type ModuleOptions struct {
	// Names resolves symbolic names. If it also implements ModuleNamer, the module name is printed.
	Names NameProvider
	// AddressOffset is added to every element's raw offset.
	AddressOffset int
	// Addresses prefixes each element with its biased address.
	Addresses bool
}

// ModuleWriter prints the declarations of a decoded module: types, imports, functions,
// globals and exports. Function bodies are not printed.
type ModuleWriter struct {
	*Listener

	out       *TextWriter
	m         *wasm.Module
	names     NameProvider
	addresses bool
}

// WriteModule writes a module's declarations to w.
func WriteModule(w io.Writer, m *wasm.Module, opts ModuleOptions) error {
	return NewModuleWriter(w, m, opts).WriteModule()
}

func NewModuleWriter(w io.Writer, m *wasm.Module, opts ModuleOptions) *ModuleWriter {
	out := NewTextWriter(w)
	l := NewListener(out, opts.Names)
	l.SetAddressOffset(opts.AddressOffset)
	return &ModuleWriter{
		Listener:  l,
		out:       out,
		m:         m,
		names:     l.names,
		addresses: opts.Addresses,
	}
}

func (w *ModuleWriter) WriteModule() (err error) {
	defer func() {
		if x := recover(); x != nil {
			if e, ok := x.(error); ok {
				err = e
				return
			}
			panic(x)
		}
	}()

	w.out.Write("(module")
	if namer, ok := w.names.(ModuleNamer); ok {
		if name, ok := namer.ModuleName(); ok {
			w.out.Write(" $" + name)
		}
	}

	w.out.Indent()
	w.writeTypes()
	w.writeImports()
	w.writeFunctions()
	w.writeGlobals()
	w.writeExports()
	w.out.Dedent()

	w.out.Write(")\n")
	return w.out.Flush()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// element starts the line for the element encoded at raw.
func (w *ModuleWriter) element(raw int) {
	w.Address(raw)
	w.out.Newline()
	if w.addresses {
		w.out.Print("(;@%06x;) ", w.CurrentAddress())
	}
}

func (w *ModuleWriter) writeTypes() {
	if w.m.Types == nil {
		return
	}
	for _, g := range w.m.Types.Groups {
		if g.Explicit {
			w.element(g.Offset)
			w.out.Write("(rec")
			w.out.Indent()
		}
		for i := g.First; i < g.First+g.Count; i++ {
			e := &w.m.Types.Entries[i]
			w.element(e.Offset)
			w.out.Write("(type ")
			w.WriteTypeRef(e.Index)
			w.out.Write(" ")
			w.writeSubType(e)
			w.out.Write(")")
		}
		if g.Explicit {
			w.out.Dedent()
			w.out.Write(")")
		}
	}
}

func (w *ModuleWriter) writeSubType(e *wasm.TypeEntry) {
	if !e.Explicit {
		w.writeComposite(e.Index, &e.Composite)
		return
	}

	w.out.Write("(sub ")
	if e.Final {
		w.out.Write("final ")
	}
	for _, super := range e.Supertypes {
		w.WriteTypeRef(super)
		w.out.Write(" ")
	}
	w.writeComposite(e.Index, &e.Composite)
	w.out.Write(")")
}

func (w *ModuleWriter) writeComposite(index uint32, c *wasm.CompositeType) {
	switch c.Kind {
	case wasm.CompositeFunc:
		w.out.Write("(func")
		w.writeParams(c.Params)
		w.writeResults(c.Results)
		w.out.Write(")")
	case wasm.CompositeStruct:
		w.out.Write("(struct")
		for i, f := range c.Fields {
			w.out.Write(" (field ")
			w.WriteFieldRef(index, uint32(i))
			w.out.Write(" ")
			w.writeField(f)
			w.out.Write(")")
		}
		w.out.Write(")")
	case wasm.CompositeArray:
		w.out.Write("(array ")
		w.writeField(c.Element())
		w.out.Write(")")
	}
}

func (w *ModuleWriter) writeField(f wasm.FieldType) {
	if f.Mutable {
		w.out.Write("(mut ")
		must(w.WriteStorageType(f.Type))
		w.out.Write(")")
		return
	}
	must(w.WriteStorageType(f.Type))
}

func (w *ModuleWriter) writeGlobalType(g wasm.GlobalType) {
	w.writeField(wasm.FieldType{Type: wasm.Unpack(g.Type), Mutable: g.Mutable})
}

func (w *ModuleWriter) writeParams(params []wasm.ValueType) {
	if len(params) == 0 {
		return
	}
	w.out.Write(" (param")
	for _, p := range params {
		w.out.Write(" ")
		must(w.WriteValueType(p))
	}
	w.out.Write(")")
}

func (w *ModuleWriter) writeResults(results []wasm.ValueType) {
	if len(results) == 0 {
		return
	}
	w.out.Write(" (result")
	for _, r := range results {
		w.out.Write(" ")
		must(w.WriteValueType(r))
	}
	w.out.Write(")")
}

// writeFunctionType writes a function's type use followed by its named parameters.
func (w *ModuleWriter) writeFunctionType(fn, typ uint32) {
	w.out.Write(" (type ")
	w.WriteTypeRef(typ)
	w.out.Write(")")

	t, ok := w.m.Type(typ)
	if !ok || t.Composite.Kind != wasm.CompositeFunc {
		return
	}
	for i, p := range t.Composite.Params {
		w.out.Write(" (param ")
		w.WriteLocalRef(fn, uint32(i))
		w.out.Write(" ")
		must(w.WriteValueType(p))
		w.out.Write(")")
	}
	w.writeResults(t.Composite.Results)
}

func (w *ModuleWriter) writeLimits(l wasm.Limits) {
	w.out.Print("%d", l.Initial)
	if l.HasMaximum() {
		w.out.Print(" %d", l.Maximum)
	}
}

func (w *ModuleWriter) writeImports() {
	if w.m.Import == nil {
		return
	}

	var funcs, globals uint32
	for _, e := range w.m.Import.Entries {
		w.element(e.Offset)
		w.out.Print("(import %q %q ", e.ModuleName, e.FieldName)
		switch im := e.Type.(type) {
		case wasm.FuncImport:
			w.out.Write("(func ")
			w.WriteFunctionRef(funcs)
			w.writeFunctionType(funcs, im.Type)
			funcs++
		case wasm.TableImport:
			w.out.Write("(table ")
			w.writeLimits(im.Type.Limits)
			w.out.Write(" ")
			must(w.WriteValueType(im.Type.ElementType))
		case wasm.MemoryImport:
			w.out.Write("(memory ")
			w.writeLimits(im.Type)
		case wasm.GlobalVarImport:
			w.out.Write("(global ")
			w.WriteGlobalRef(globals)
			w.out.Write(" ")
			w.writeGlobalType(im.Type)
			globals++
		case wasm.TagImport:
			w.out.Write("(tag (type ")
			w.WriteTypeRef(im.Type)
			w.out.Write(")")
		}
		w.out.Write("))")
	}
}

func (w *ModuleWriter) writeFunctions() {
	if w.m.Function == nil {
		return
	}

	base := uint32(len(w.m.ImportedFunctions()))
	for i, f := range w.m.Function.Entries {
		index := base + uint32(i)
		w.element(f.Offset)
		w.out.Write("(func ")
		w.WriteFunctionRef(index)
		w.writeFunctionType(index, f.Type)
		w.out.Write(")")
	}
}

func (w *ModuleWriter) writeGlobals() {
	if w.m.Global == nil {
		return
	}

	base := uint32(len(w.m.ImportedGlobals()))
	for i, g := range w.m.Global.Globals {
		w.element(g.Offset)
		w.out.Write("(global ")
		w.WriteGlobalRef(base + uint32(i))
		w.out.Write(" ")
		w.writeGlobalType(g.Type)
		w.out.Write(")")
	}
}

func (w *ModuleWriter) writeExports() {
	if w.m.Export == nil {
		return
	}

	for _, e := range w.m.Export.Entries {
		w.element(e.Offset)
		w.out.Print("(export %q (%v ", e.FieldStr, e.Kind)
		switch e.Kind {
		case wasm.ExternalFunction:
			w.WriteFunctionRef(e.Index)
		case wasm.ExternalGlobal:
			w.WriteGlobalRef(e.Index)
		default:
			w.out.Print("%d", e.Index)
		}
		w.out.Write("))")
	}
}
