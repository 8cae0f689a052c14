// Package wasmtest assembles small WebAssembly binaries for tests.
package wasmtest

import (
	"bytes"

	"github.com/wasmback/wasmback/wasm/leb128"
)

// Section IDs used by the helpers below.
const (
	SectionCustom   = 0
	SectionType     = 1
	SectionImport   = 2
	SectionFunction = 3
	SectionTable    = 4
	SectionMemory   = 5
	SectionGlobal   = 6
	SectionExport   = 7
	SectionCode     = 10
)

// Value and storage type codes.
var (
	I32       = []byte{0x7f}
	I64       = []byte{0x7e}
	F32       = []byte{0x7d}
	F64       = []byte{0x7c}
	FuncRef   = []byte{0x70}
	ExternRef = []byte{0x6f}
	AnyRef    = []byte{0x6e}
	I31Ref    = []byte{0x6c}
	StructRef = []byte{0x6b}
	ArrayRef  = []byte{0x6a}
	I8        = []byte{0x78}
	I16       = []byte{0x77}
)

// Cat concatenates byte slices.
func Cat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// U32 encodes v as an unsigned LEB128 value.
func U32(v uint32) []byte {
	var buf bytes.Buffer
	if _, err := leb128.WriteVarUint32(&buf, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// S64 encodes v as a signed LEB128 value.
func S64(v int64) []byte {
	var buf bytes.Buffer
	if _, err := leb128.WriteVarint64(&buf, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Name encodes a length-prefixed string.
func Name(s string) []byte {
	return Cat(U32(uint32(len(s))), []byte(s))
}

// Vec encodes a count-prefixed vector.
func Vec(items ...[]byte) []byte {
	return Cat(U32(uint32(len(items))), Cat(items...))
}

// Module prefixes sections with the binary header.
func Module(sections ...[]byte) []byte {
	return Cat([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, Cat(sections...))
}

// Section frames a section payload.
func Section(id byte, payload ...[]byte) []byte {
	body := Cat(payload...)
	return Cat([]byte{id}, U32(uint32(len(body))), body)
}

// Custom frames a custom section.
func Custom(name string, data []byte) []byte {
	return Section(SectionCustom, Name(name), data)
}

// Ref encodes (ref null index).
func Ref(index uint32) []byte {
	return Cat([]byte{0x63}, S64(int64(index)))
}

// Func encodes a function type.
func Func(params, results [][]byte) []byte {
	return Cat([]byte{0x60}, Vec(params...), Vec(results...))
}

// Field encodes a field type.
func Field(storage []byte, mutable bool) []byte {
	if mutable {
		return Cat(storage, []byte{1})
	}
	return Cat(storage, []byte{0})
}

// Struct encodes a struct type.
func Struct(fields ...[]byte) []byte {
	return Cat([]byte{0x5f}, Vec(fields...))
}

// Array encodes an array type.
func Array(field []byte) []byte {
	return Cat([]byte{0x5e}, field)
}

// Sub encodes a subtype declaration.
func Sub(final bool, supertypes []uint32, composite []byte) []byte {
	prefix := byte(0x50)
	if final {
		prefix = 0x4f
	}
	var supers [][]byte
	for _, s := range supertypes {
		supers = append(supers, U32(s))
	}
	return Cat([]byte{prefix}, Vec(supers...), composite)
}

// Rec encodes a recursion group.
func Rec(types ...[]byte) []byte {
	return Cat([]byte{0x4e}, Vec(types...))
}

// ImportFunc encodes a function import.
func ImportFunc(module, field string, typ uint32) []byte {
	return Cat(Name(module), Name(field), []byte{0x00}, U32(typ))
}

// ImportGlobal encodes a global import.
func ImportGlobal(module, field string, typ []byte, mutable bool) []byte {
	return Cat(Name(module), Name(field), []byte{0x03}, Field(typ, mutable))
}

// ImportMemory encodes a memory import with an initial size and no maximum.
func ImportMemory(module, field string, initial uint32) []byte {
	return Cat(Name(module), Name(field), []byte{0x02, 0x00}, U32(initial))
}

// Global encodes a global definition with the given constant initializer (without its end).
func Global(typ []byte, mutable bool, init []byte) []byte {
	return Cat(Field(typ, mutable), init, []byte{0x0b})
}

// Export encodes an export entry.
func Export(name string, kind byte, index uint32) []byte {
	return Cat(Name(name), []byte{kind}, U32(index))
}

// Naming is an index/name pair.
type Naming struct {
	Index uint32
	Name  string
}

// NameMap encodes a name map.
func NameMap(names ...Naming) []byte {
	var items [][]byte
	for _, n := range names {
		items = append(items, Cat(U32(n.Index), Name(n.Name)))
	}
	return Vec(items...)
}

// Indirect encodes one entry of an indirect name map.
func Indirect(owner uint32, names ...Naming) []byte {
	return Cat(U32(owner), NameMap(names...))
}

// NameSubsection frames a name subsection.
func NameSubsection(kind byte, payload ...[]byte) []byte {
	body := Cat(payload...)
	return Cat([]byte{kind}, U32(uint32(len(body))), body)
}

// PointModule returns a module that exercises every decoded section kind:
//
//	type 0: struct Point {x: i32, y: mut i32}
//	type 1: func (i32, (ref null 0)) -> f64
//	type 2: array (mut i16)
//	types 3, 4: rec (sub (struct i8)) (sub final 3 (struct i8 anyref))
//	func 0: import env.log (type 1); global 0: import env.counter (mut i32)
//	func 1: main (type 1, params a and p); global 1: origin (ref null 0)
//	export "main" (func 1)
func PointModule() []byte {
	types := Section(SectionType, Vec(
		Struct(Field(I32, false), Field(I32, true)),
		Func([][]byte{I32, Ref(0)}, [][]byte{F64}),
		Array(Field(I16, true)),
		Rec(
			Sub(false, nil, Struct(Field(I8, false))),
			Sub(true, []uint32{3}, Struct(Field(I8, false), Field(AnyRef, false))),
		),
	))
	imports := Section(SectionImport, Vec(
		ImportFunc("env", "log", 1),
		ImportGlobal("env", "counter", I32, true),
	))
	functions := Section(SectionFunction, Vec(U32(1)))
	globals := Section(SectionGlobal, Vec(
		Global(Ref(0), false, []byte{0xd0, 0x00}),
	))
	exports := Section(SectionExport, Vec(Export("main", 0x00, 1)))
	names := Custom("name", Cat(
		NameSubsection(0, Name("points")),
		NameSubsection(1, NameMap(Naming{1, "main"})),
		NameSubsection(2, Vec(Indirect(1, Naming{0, "a"}, Naming{1, "p"}))),
		NameSubsection(4, NameMap(Naming{0, "Point"}, Naming{2, "Shorts"})),
		NameSubsection(7, NameMap(Naming{1, "origin"})),
		NameSubsection(10, Vec(Indirect(0, Naming{0, "x"}, Naming{1, "y"}))),
	))
	return Module(types, imports, functions, globals, exports, names)
}
