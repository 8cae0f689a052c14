// Package names provides symbol tables that resolve names for disassembly.
package names

import (
	"sort"

	"github.com/wasmback/wasmback/disasm"
)

// Kind identifies a name namespace.
type Kind string

const (
	KindGlobal   Kind = "global"
	KindFunction Kind = "function"
	KindType     Kind = "type"
	KindField    Kind = "field"
	KindLocal    Kind = "local"
)

type ownedIndex struct {
	owner, index uint32
}

// Table holds names for the five reference namespaces and, optionally, the module. Fields
// are owned by a type index and locals by a function index. The zero value is not usable;
// use New.
type Table struct {
	module    string
	globals   map[uint32]string
	functions map[uint32]string
	types     map[uint32]string
	fields    map[ownedIndex]string
	locals    map[ownedIndex]string
}

var (
	_ disasm.NameProvider = (*Table)(nil)
	_ disasm.ModuleNamer  = (*Table)(nil)
)

func New() *Table {
	return &Table{
		globals:   map[uint32]string{},
		functions: map[uint32]string{},
		types:     map[uint32]string{},
		fields:    map[ownedIndex]string{},
		locals:    map[ownedIndex]string{},
	}
}

func (t *Table) SetModuleName(name string) {
	t.module = name
}

func (t *Table) SetGlobal(index uint32, name string) {
	t.globals[index] = name
}

func (t *Table) SetFunction(index uint32, name string) {
	t.functions[index] = name
}

func (t *Table) SetType(index uint32, name string) {
	t.types[index] = name
}

func (t *Table) SetField(typeIndex, index uint32, name string) {
	t.fields[ownedIndex{typeIndex, index}] = name
}

func (t *Table) SetLocal(functionIndex, index uint32, name string) {
	t.locals[ownedIndex{functionIndex, index}] = name
}

// Set records a name in the given namespace. The owner is ignored for globals, functions
// and types.
func (t *Table) Set(kind Kind, owner, index uint32, name string) error {
	switch kind {
	case KindGlobal:
		t.SetGlobal(index, name)
	case KindFunction:
		t.SetFunction(index, name)
	case KindType:
		t.SetType(index, name)
	case KindField:
		t.SetField(owner, index, name)
	case KindLocal:
		t.SetLocal(owner, index, name)
	default:
		return &UnknownKindError{Kind: string(kind)}
	}
	return nil
}

func (t *Table) ModuleName() (string, bool) {
	return t.module, t.module != ""
}

func (t *Table) Global(index uint32) (string, bool) {
	name, ok := t.globals[index]
	return name, ok
}

func (t *Table) Function(index uint32) (string, bool) {
	name, ok := t.functions[index]
	return name, ok
}

func (t *Table) Type(index uint32) (string, bool) {
	name, ok := t.types[index]
	return name, ok
}

func (t *Table) Field(typeIndex, index uint32) (string, bool) {
	name, ok := t.fields[ownedIndex{typeIndex, index}]
	return name, ok
}

func (t *Table) Local(functionIndex, index uint32) (string, bool) {
	name, ok := t.locals[ownedIndex{functionIndex, index}]
	return name, ok
}

// Len returns the number of names in the table, not counting the module name.
func (t *Table) Len() int {
	return len(t.globals) + len(t.functions) + len(t.types) + len(t.fields) + len(t.locals)
}

// Symbol is a single named entry.
type Symbol struct {
	Kind  Kind
	Owner uint32
	Index uint32
	Name  string
}

// Symbols returns every name in the table ordered by kind, owner and index.
func (t *Table) Symbols() []Symbol {
	symbols := make([]Symbol, 0, t.Len())
	for i, n := range t.globals {
		symbols = append(symbols, Symbol{Kind: KindGlobal, Index: i, Name: n})
	}
	for i, n := range t.functions {
		symbols = append(symbols, Symbol{Kind: KindFunction, Index: i, Name: n})
	}
	for i, n := range t.types {
		symbols = append(symbols, Symbol{Kind: KindType, Index: i, Name: n})
	}
	for k, n := range t.fields {
		symbols = append(symbols, Symbol{Kind: KindField, Owner: k.owner, Index: k.index, Name: n})
	}
	for k, n := range t.locals {
		symbols = append(symbols, Symbol{Kind: KindLocal, Owner: k.owner, Index: k.index, Name: n})
	}

	sort.Slice(symbols, func(i, j int) bool {
		a, b := symbols[i], symbols[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		return a.Index < b.Index
	})
	return symbols
}

// Chain resolves names through each provider in turn. The first provider that knows a name
// wins. Nil entries, including nil *Table values, are skipped.
type Chain []disasm.NameProvider

var (
	_ disasm.NameProvider = Chain(nil)
	_ disasm.ModuleNamer  = Chain(nil)
)

func (c Chain) first(lookup func(p disasm.NameProvider) (string, bool)) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if t, ok := p.(*Table); ok && t == nil {
			continue
		}
		if name, ok := lookup(p); ok {
			return name, true
		}
	}
	return "", false
}

func (c Chain) ModuleName() (string, bool) {
	return c.first(func(p disasm.NameProvider) (string, bool) {
		if namer, ok := p.(disasm.ModuleNamer); ok {
			return namer.ModuleName()
		}
		return "", false
	})
}

func (c Chain) Global(index uint32) (string, bool) {
	return c.first(func(p disasm.NameProvider) (string, bool) { return p.Global(index) })
}

func (c Chain) Function(index uint32) (string, bool) {
	return c.first(func(p disasm.NameProvider) (string, bool) { return p.Function(index) })
}

func (c Chain) Type(index uint32) (string, bool) {
	return c.first(func(p disasm.NameProvider) (string, bool) { return p.Type(index) })
}

func (c Chain) Field(typeIndex, index uint32) (string, bool) {
	return c.first(func(p disasm.NameProvider) (string, bool) { return p.Field(typeIndex, index) })
}

func (c Chain) Local(functionIndex, index uint32) (string, bool) {
	return c.first(func(p disasm.NameProvider) (string, bool) { return p.Local(functionIndex, index) })
}
