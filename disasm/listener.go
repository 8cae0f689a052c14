// Package disasm renders decoded WebAssembly types and symbol references as text.
package disasm

import (
	"fmt"
	"strconv"

	"github.com/wasmback/wasmback/wasm"
)

// AddressListener is notified of the raw byte offset of each decoded element.
type AddressListener interface {
	Address(raw int)
}

// InvalidReferenceKindError is returned when a SpecialReference has a kind outside of the
// known set.
type InvalidReferenceKindError struct {
	Kind wasm.ReferenceKind
}

func (e *InvalidReferenceKindError) Error() string {
	return fmt.Sprintf("disasm: invalid reference kind %d", int(e.Kind))
}

// InvalidPackedWidthError is returned when a Packed storage type has a width outside of the
// known set.
type InvalidPackedWidthError struct {
	Width wasm.PackedWidth
}

func (e *InvalidPackedWidthError) Error() string {
	return fmt.Sprintf("disasm: invalid packed width %d", int(e.Width))
}

// Listener renders types and references to a Writer and tracks the address of the element
// being rendered. A Listener is used by a single pass and is not safe for concurrent use.
type Listener struct {
	out   Writer
	names NameProvider

	address       int
	addressOffset int
}

var _ AddressListener = (*Listener)(nil)

// NewListener returns a listener that writes to out and resolves names through names. A nil
// names resolves nothing.
func NewListener(out Writer, names NameProvider) *Listener {
	if names == nil {
		names = NoNames
	}
	return &Listener{out: out, names: names}
}

// SetAddressOffset sets the bias added to raw addresses passed to Address.
func (l *Listener) SetAddressOffset(bias int) {
	l.addressOffset = bias
}

func (l *Listener) Address(raw int) {
	l.address = raw + l.addressOffset
}

// CurrentAddress returns the biased address of the most recent element.
func (l *Listener) CurrentAddress() int {
	return l.address
}

// WriteBlockType writes nothing for an absent type and a space followed by the type otherwise.
func (l *Listener) WriteBlockType(t wasm.ValueType) error {
	if t == nil {
		return nil
	}
	token, err := l.valueType(t)
	if err != nil {
		return err
	}
	l.out.Write(" ")
	l.out.Write(token)
	return nil
}

func (l *Listener) WriteStorageType(t wasm.StorageType) error {
	switch t := t.(type) {
	case wasm.Packed:
		switch t.Width {
		case wasm.PackedI8:
			l.out.Write("i8")
		case wasm.PackedI16:
			l.out.Write("i16")
		default:
			return &InvalidPackedWidthError{Width: t.Width}
		}
		return nil
	case wasm.Unpacked:
		return l.WriteValueType(t.Type)
	default:
		panic(fmt.Sprintf("disasm: unexpected storage type %T", t))
	}
}

func (l *Listener) WriteValueType(t wasm.ValueType) error {
	token, err := l.valueType(t)
	if err != nil {
		return err
	}
	l.out.Write(token)
	return nil
}

// valueType renders t without writing it, so that a failure leaves the output untouched.
func (l *Listener) valueType(t wasm.ValueType) (string, error) {
	switch t := t.(type) {
	case nil:
		return "unknown", nil
	case wasm.Number:
		switch t.Kind {
		case wasm.NumberI32:
			return "i32", nil
		case wasm.NumberI64:
			return "i64", nil
		case wasm.NumberF32:
			return "f32", nil
		case wasm.NumberF64:
			return "f64", nil
		default:
			return "unknown", nil
		}
	case wasm.SpecialReference:
		switch t.Kind {
		case wasm.RefAny:
			return "anyref", nil
		case wasm.RefFunc:
			return "funcref", nil
		case wasm.RefArray:
			return "arrayref", nil
		case wasm.RefExtern:
			return "externref", nil
		case wasm.RefStruct:
			return "structref", nil
		case wasm.RefI31:
			return "i31ref", nil
		default:
			return "", &InvalidReferenceKindError{Kind: t.Kind}
		}
	case wasm.CompositeReference:
		name, ok := l.names.Type(t.Index)
		return "(ref null " + Reference(t.Index, name, ok) + ")", nil
	default:
		panic(fmt.Sprintf("disasm: unexpected value type %T", t))
	}
}

func (l *Listener) WriteGlobalRef(index uint32) {
	name, ok := l.names.Global(index)
	l.out.Write(Reference(index, name, ok))
}

func (l *Listener) WriteFunctionRef(index uint32) {
	name, ok := l.names.Function(index)
	l.out.Write(Reference(index, name, ok))
}

func (l *Listener) WriteTypeRef(index uint32) {
	name, ok := l.names.Type(index)
	l.out.Write(Reference(index, name, ok))
}

func (l *Listener) WriteFieldRef(typeIndex, index uint32) {
	name, ok := l.names.Field(typeIndex, index)
	l.out.Write(Reference(index, name, ok))
}

func (l *Listener) WriteLocalRef(functionIndex, index uint32) {
	name, ok := l.names.Local(functionIndex, index)
	l.out.Write(Reference(index, name, ok))
}

// Reference renders an index, followed by its name if it has one.
func Reference(index uint32, name string, ok bool) string {
	i := strconv.FormatUint(uint64(index), 10)
	if !ok {
		return i
	}
	return "(; " + i + " ;) $" + name
}
