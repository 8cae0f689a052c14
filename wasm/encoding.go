package wasm

import (
	"fmt"
	"io"

	"fortio.org/safecast"

	"github.com/wasmback/wasmback/wasm/leb128"
)

// Binary type constructors.
const (
	typeI32       = 0x7f
	typeI64       = 0x7e
	typeF32       = 0x7d
	typeF64       = 0x7c
	typeFuncRef   = 0x70
	typeExternRef = 0x6f
	typeAnyRef    = 0x6e
	typeI31Ref    = 0x6c
	typeStructRef = 0x6b
	typeArrayRef  = 0x6a
	typeRefNull   = 0x63
	typeRef       = 0x64

	typePackedI8  = 0x78
	typePackedI16 = 0x77

	typeRec      = 0x4e
	typeSub      = 0x50
	typeSubFinal = 0x4f
)

// UnsupportedTypeError is returned when a type constructor outside of the supported
// value type set is encountered (e.g. v128 or the bottom reference types).
type UnsupportedTypeError byte

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("wasm: unsupported value type %#x", byte(e))
}

// UnsupportedHeapTypeError is returned for abstract heap types outside of the supported set.
type UnsupportedHeapTypeError int64

func (e UnsupportedHeapTypeError) Error() string {
	return fmt.Sprintf("wasm: unsupported heap type %d", int64(e))
}

// InvalidTypeFormError is returned when a type definition does not start with a known form.
type InvalidTypeFormError byte

func (e InvalidTypeFormError) Error() string {
	return fmt.Sprintf("wasm: invalid type form %#x", byte(e))
}

func specialReference(code byte) (ValueType, bool) {
	switch code {
	case typeFuncRef:
		return FuncRef, true
	case typeExternRef:
		return ExternRef, true
	case typeAnyRef:
		return AnyRef, true
	case typeI31Ref:
		return I31Ref, true
	case typeStructRef:
		return StructRef, true
	case typeArrayRef:
		return ArrayRef, true
	}
	return nil, false
}

// readHeapType reads an s33 heap type. Non-negative values are type indices.
func readHeapType(r io.Reader) (ValueType, error) {
	v, err := leb128.ReadVarint33(r)
	if err != nil {
		return nil, err
	}
	if v >= 0 {
		index, err := safecast.Conv[uint32](v)
		if err != nil {
			return nil, fmt.Errorf("wasm: heap type index %d: %w", v, err)
		}
		return CompositeReference{Index: index}, nil
	}
	if v >= -64 {
		if t, ok := specialReference(byte(v + 128)); ok {
			return t, nil
		}
	}
	return nil, UnsupportedHeapTypeError(v)
}

func valueTypeFromCode(r io.Reader, code byte) (ValueType, error) {
	switch code {
	case typeI32:
		return I32, nil
	case typeI64:
		return I64, nil
	case typeF32:
		return F32, nil
	case typeF64:
		return F64, nil
	case typeRefNull, typeRef:
		return readHeapType(r)
	}
	if t, ok := specialReference(code); ok {
		return t, nil
	}
	return nil, UnsupportedTypeError(code)
}

func readValueType(r io.Reader) (ValueType, error) {
	code, err := readByte(r)
	if err != nil {
		return nil, err
	}
	return valueTypeFromCode(r, code)
}

func readValueTypes(r io.Reader) ([]ValueType, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, err
	}
	types := make([]ValueType, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		t, err := readValueType(r)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func readStorageType(r io.Reader) (StorageType, error) {
	code, err := readByte(r)
	if err != nil {
		return nil, err
	}
	switch code {
	case typePackedI8:
		return I8, nil
	case typePackedI16:
		return I16, nil
	}
	t, err := valueTypeFromCode(r, code)
	if err != nil {
		return nil, err
	}
	return Unpack(t), nil
}

func readMutability(r io.Reader) (bool, error) {
	b, err := readByte(r)
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("wasm: invalid mutability %#x", b)
	}
}

func (f *FieldType) UnmarshalWASM(r io.Reader) error {
	t, err := readStorageType(r)
	if err != nil {
		return err
	}
	mut, err := readMutability(r)
	if err != nil {
		return err
	}
	f.Type, f.Mutable = t, mut
	return nil
}

func (g *GlobalType) UnmarshalWASM(r io.Reader) error {
	t, err := readValueType(r)
	if err != nil {
		return err
	}
	mut, err := readMutability(r)
	if err != nil {
		return err
	}
	g.Type, g.Mutable = t, mut
	return nil
}

func readCompositeType(r io.Reader, form byte) (CompositeType, error) {
	c := CompositeType{Kind: CompositeKind(form)}
	switch c.Kind {
	case CompositeFunc:
		var err error
		if c.Params, err = readValueTypes(r); err != nil {
			return c, err
		}
		if c.Results, err = readValueTypes(r); err != nil {
			return c, err
		}
	case CompositeStruct:
		count, err := leb128.ReadVarUint32(r)
		if err != nil {
			return c, err
		}
		c.Fields = make([]FieldType, 0, getInitialCap(count))
		for i := uint32(0); i < count; i++ {
			var f FieldType
			if err := f.UnmarshalWASM(r); err != nil {
				return c, err
			}
			c.Fields = append(c.Fields, f)
		}
	case CompositeArray:
		var f FieldType
		if err := f.UnmarshalWASM(r); err != nil {
			return c, err
		}
		c.Fields = []FieldType{f}
	default:
		return c, InvalidTypeFormError(form)
	}
	return c, nil
}

func readSubType(r io.Reader, form byte) (SubType, error) {
	var s SubType
	if form == typeSub || form == typeSubFinal {
		s.Explicit, s.Final = true, form == typeSubFinal

		count, err := leb128.ReadVarUint32(r)
		if err != nil {
			return s, err
		}
		s.Supertypes = make([]uint32, 0, getInitialCap(count))
		for i := uint32(0); i < count; i++ {
			super, err := leb128.ReadVarUint32(r)
			if err != nil {
				return s, err
			}
			s.Supertypes = append(s.Supertypes, super)
		}

		if form, err = readByte(r); err != nil {
			return s, err
		}
	} else {
		// Definitions without a sub prefix are implicitly final.
		s.Final = true
	}

	c, err := readCompositeType(r, form)
	if err != nil {
		return s, err
	}
	s.Composite = c
	return s, nil
}

// Limits describes the size bounds of a table or memory.
type Limits struct {
	Flags   byte
	Initial uint64
	Maximum uint64
}

// HasMaximum returns true if the limits declare an upper bound.
func (l Limits) HasMaximum() bool {
	return l.Flags&0x1 != 0
}

func (l *Limits) UnmarshalWASM(r io.Reader) error {
	flags, err := readByte(r)
	if err != nil {
		return err
	}
	if flags > 0x07 {
		return fmt.Errorf("wasm: invalid limits flags %#x", flags)
	}
	read := func() (uint64, error) {
		if flags&0x4 != 0 {
			return leb128.ReadVarUint64(r)
		}
		v, err := leb128.ReadVarUint32(r)
		return uint64(v), err
	}

	l.Flags = flags
	if l.Initial, err = read(); err != nil {
		return err
	}
	if l.HasMaximum() {
		if l.Maximum, err = read(); err != nil {
			return err
		}
	}
	return nil
}

// TableType describes a table's element type and size.
type TableType struct {
	ElementType ValueType
	Limits      Limits
}

func (t *TableType) UnmarshalWASM(r io.Reader) error {
	elem, err := readValueType(r)
	if err != nil {
		return err
	}
	t.ElementType = elem
	return t.Limits.UnmarshalWASM(r)
}

// UnsupportedInitOpcodeError is returned when a constant expression contains an instruction
// that cannot appear in one.
type UnsupportedInitOpcodeError uint32

func (e UnsupportedInitOpcodeError) Error() string {
	return fmt.Sprintf("wasm: unsupported opcode %#x in constant expression", uint32(e))
}

// skipConstExpr consumes a constant expression up to and including its terminating end.
func skipConstExpr(r io.Reader) error {
	for {
		op, err := readByte(r)
		if err != nil {
			return err
		}
		switch op {
		case 0x0b: // end
			return nil
		case 0x41: // i32.const
			_, err = leb128.ReadVarint32(r)
		case 0x42: // i64.const
			_, err = leb128.ReadVarint64(r)
		case 0x43: // f32.const
			err = skipBytes(r, 4)
		case 0x44: // f64.const
			err = skipBytes(r, 8)
		case 0x23, 0xd2: // global.get, ref.func
			_, err = leb128.ReadVarUint32(r)
		case 0xd0: // ref.null
			_, err = leb128.ReadVarint33(r)
		case 0x6a, 0x6b, 0x6c, 0x7c, 0x7d, 0x7e: // extended constant arithmetic
		case 0xfb:
			err = skipGCConstInstr(r)
		case 0xfd:
			err = skipVectorConstInstr(r)
		default:
			return UnsupportedInitOpcodeError(op)
		}
		if err != nil {
			return err
		}
	}
}

func skipGCConstInstr(r io.Reader) error {
	sub, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	switch sub {
	case 0x00, 0x01, 0x06, 0x07: // struct.new, struct.new_default, array.new, array.new_default
		_, err = leb128.ReadVarUint32(r)
		return err
	case 0x08: // array.new_fixed
		if _, err = leb128.ReadVarUint32(r); err != nil {
			return err
		}
		_, err = leb128.ReadVarUint32(r)
		return err
	case 0x1a, 0x1b, 0x1c: // any.convert_extern, extern.convert_any, ref.i31
		return nil
	default:
		return UnsupportedInitOpcodeError(0xfb00 | sub)
	}
}

func skipVectorConstInstr(r io.Reader) error {
	sub, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	if sub != 0x0c { // v128.const
		return UnsupportedInitOpcodeError(0xfd00 | sub)
	}
	return skipBytes(r, 16)
}
