package wasm

import "fmt"

// ValueType is the type of a stack slot, local, global or block result. The set of
// implementations is closed: Number, SpecialReference and CompositeReference. A nil
// ValueType means that no type is present (e.g. a block without a result).
type ValueType interface {
	isValueType()
}

// NumberKind identifies a primitive numeric type.
type NumberKind byte

const (
	NumberI32 NumberKind = iota
	NumberI64
	NumberF32
	NumberF64
)

func (k NumberKind) String() string {
	switch k {
	case NumberI32:
		return "int32"
	case NumberI64:
		return "int64"
	case NumberF32:
		return "float32"
	case NumberF64:
		return "float64"
	default:
		return fmt.Sprintf("NumberKind(%d)", int(k))
	}
}

// ReferenceKind identifies a built-in abstract reference type.
type ReferenceKind byte

const (
	RefAny ReferenceKind = iota
	RefFunc
	RefArray
	RefExtern
	RefStruct
	RefI31
)

func (k ReferenceKind) String() string {
	switch k {
	case RefAny:
		return "any"
	case RefFunc:
		return "func"
	case RefArray:
		return "array"
	case RefExtern:
		return "extern"
	case RefStruct:
		return "struct"
	case RefI31:
		return "i31"
	default:
		return fmt.Sprintf("ReferenceKind(%d)", int(k))
	}
}

// Number is a primitive numeric value type.
type Number struct {
	Kind NumberKind
}

// SpecialReference is a built-in reference type with no further structure.
type SpecialReference struct {
	Kind ReferenceKind
}

// CompositeReference is a nullable reference to a user-defined type. Index names an entry
// in the module's type table; the reference does not own the referenced type.
type CompositeReference struct {
	Index uint32
}

func (Number) isValueType()             {}
func (SpecialReference) isValueType()   {}
func (CompositeReference) isValueType() {}

var (
	I32 = Number{Kind: NumberI32}
	I64 = Number{Kind: NumberI64}
	F32 = Number{Kind: NumberF32}
	F64 = Number{Kind: NumberF64}

	AnyRef    = SpecialReference{Kind: RefAny}
	FuncRef   = SpecialReference{Kind: RefFunc}
	ArrayRef  = SpecialReference{Kind: RefArray}
	ExternRef = SpecialReference{Kind: RefExtern}
	StructRef = SpecialReference{Kind: RefStruct}
	I31Ref    = SpecialReference{Kind: RefI31}
)

// StorageType is the type of a struct field or array element. The set of implementations is
// closed: Packed and Unpacked.
type StorageType interface {
	isStorageType()
}

// PackedWidth identifies a sub-word storage width.
type PackedWidth byte

const (
	PackedI8 PackedWidth = iota
	PackedI16
)

func (w PackedWidth) String() string {
	switch w {
	case PackedI8:
		return "int8"
	case PackedI16:
		return "int16"
	default:
		return fmt.Sprintf("PackedWidth(%d)", int(w))
	}
}

// Packed is a sub-word storage type. Values are sign- or zero-extended when they are read.
type Packed struct {
	Width PackedWidth
}

// Unpacked is a storage type that holds a plain value type.
type Unpacked struct {
	Type ValueType
}

func (Packed) isStorageType()   {}
func (Unpacked) isStorageType() {}

var (
	I8  = Packed{Width: PackedI8}
	I16 = Packed{Width: PackedI16}
)

// Unpack returns the storage type that holds values of type t.
func Unpack(t ValueType) StorageType {
	return Unpacked{Type: t}
}

// AsUnpacked returns the value type held by an unpacked storage type, or nil if s is packed.
func AsUnpacked(s StorageType) ValueType {
	if u, ok := s.(Unpacked); ok {
		return u.Type
	}
	return nil
}

// FieldType describes a struct field or an array element.
type FieldType struct {
	Type    StorageType
	Mutable bool
}

// GlobalType describes the type of a global variable.
type GlobalType struct {
	Type    ValueType
	Mutable bool
}

// CompositeKind identifies the shape of a type definition.
type CompositeKind byte

const (
	CompositeFunc   CompositeKind = 0x60
	CompositeStruct CompositeKind = 0x5f
	CompositeArray  CompositeKind = 0x5e
)

func (k CompositeKind) String() string {
	switch k {
	case CompositeFunc:
		return "func"
	case CompositeStruct:
		return "struct"
	case CompositeArray:
		return "array"
	default:
		return fmt.Sprintf("CompositeKind(%#x)", byte(k))
	}
}

// CompositeType is a function, struct or array type definition. For arrays, Fields holds
// exactly one entry describing the element.
type CompositeType struct {
	Kind    CompositeKind
	Params  []ValueType
	Results []ValueType
	Fields  []FieldType
}

// Element returns the element type of an array type.
func (c *CompositeType) Element() FieldType {
	return c.Fields[0]
}

// SubType is a type definition together with its declared supertypes. Explicit is false for
// definitions that were encoded without a sub/sub final prefix.
type SubType struct {
	Explicit   bool
	Final      bool
	Supertypes []uint32
	Composite  CompositeType
}
