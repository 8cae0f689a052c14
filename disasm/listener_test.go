package disasm

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmback/wasmback/wasm"
)

type ownedName struct {
	owner, index uint32
}

type testNames struct {
	module    string
	globals   map[uint32]string
	functions map[uint32]string
	types     map[uint32]string
	fields    map[ownedName]string
	locals    map[ownedName]string
}

func (n *testNames) ModuleName() (string, bool) {
	return n.module, n.module != ""
}

func (n *testNames) Global(i uint32) (string, bool) {
	s, ok := n.globals[i]
	return s, ok
}

func (n *testNames) Function(i uint32) (string, bool) {
	s, ok := n.functions[i]
	return s, ok
}

func (n *testNames) Type(i uint32) (string, bool) {
	s, ok := n.types[i]
	return s, ok
}

func (n *testNames) Field(owner, i uint32) (string, bool) {
	s, ok := n.fields[ownedName{owner, i}]
	return s, ok
}

func (n *testNames) Local(owner, i uint32) (string, bool) {
	s, ok := n.locals[ownedName{owner, i}]
	return s, ok
}

func newTestListener(names NameProvider) (*Listener, *StringWriter) {
	var out StringWriter
	return NewListener(&out, names), &out
}

func TestWriteValueType(t *testing.T) {
	cases := []struct {
		typ  wasm.ValueType
		want string
	}{
		{nil, "unknown"},
		{wasm.I32, "i32"},
		{wasm.I64, "i64"},
		{wasm.F32, "f32"},
		{wasm.F64, "f64"},
		{wasm.AnyRef, "anyref"},
		{wasm.FuncRef, "funcref"},
		{wasm.ArrayRef, "arrayref"},
		{wasm.ExternRef, "externref"},
		{wasm.StructRef, "structref"},
		{wasm.I31Ref, "i31ref"},
		{wasm.CompositeReference{Index: 7}, "(ref null 7)"},
		{wasm.Number{Kind: 9}, "unknown"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			l, out := newTestListener(nil)
			require.NoError(t, l.WriteValueType(c.typ))
			assert.Equal(t, c.want, out.String())
		})
	}
}

func TestWriteValueTypeInvalidReference(t *testing.T) {
	l, out := newTestListener(nil)

	err := l.WriteValueType(wasm.SpecialReference{Kind: 42})
	var invalid *InvalidReferenceKindError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, wasm.ReferenceKind(42), invalid.Kind)
	assert.Empty(t, out.String())

	assert.Error(t, l.WriteBlockType(wasm.SpecialReference{Kind: 42}))
	assert.Empty(t, out.String())
}

func TestWriteStorageType(t *testing.T) {
	cases := []struct {
		typ  wasm.StorageType
		want string
	}{
		{wasm.I8, "i8"},
		{wasm.I16, "i16"},
		{wasm.Unpack(wasm.F64), "f64"},
		{wasm.Unpack(wasm.I31Ref), "i31ref"},
		{wasm.Unpack(nil), "unknown"},
		{wasm.Unpack(wasm.CompositeReference{Index: 3}), "(ref null 3)"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			l, out := newTestListener(nil)
			require.NoError(t, l.WriteStorageType(c.typ))
			assert.Equal(t, c.want, out.String())
		})
	}

	l, out := newTestListener(nil)
	var invalid *InvalidPackedWidthError
	assert.ErrorAs(t, l.WriteStorageType(wasm.Packed{Width: 5}), &invalid)
	assert.Empty(t, out.String())
}

func TestWriteBlockType(t *testing.T) {
	l, out := newTestListener(nil)
	require.NoError(t, l.WriteBlockType(nil))
	assert.Equal(t, "", out.String())

	for _, typ := range []wasm.ValueType{wasm.I32, wasm.ExternRef, wasm.CompositeReference{Index: 1}} {
		var value StringWriter
		require.NoError(t, NewListener(&value, nil).WriteValueType(typ))

		out.Reset()
		require.NoError(t, l.WriteBlockType(typ))
		first := out.String()
		assert.Equal(t, " "+value.String(), first)

		out.Reset()
		require.NoError(t, l.WriteBlockType(typ))
		assert.Equal(t, first, out.String())
	}
}

func TestCompositeReferenceScenario(t *testing.T) {
	l, out := newTestListener(&testNames{types: map[uint32]string{42: "Point"}})
	require.NoError(t, l.WriteValueType(wasm.CompositeReference{Index: 42}))
	assert.Equal(t, "(ref null (; 42 ;) $Point)", out.String())
}

func TestReferences(t *testing.T) {
	names := &testNames{
		globals:   map[uint32]string{0: "g"},
		functions: map[uint32]string{1: "main"},
		types:     map[uint32]string{2: "Point"},
		fields:    map[ownedName]string{{2, 0}: "x"},
		locals:    map[ownedName]string{{1, 3}: "tmp"},
	}

	cases := []struct {
		name  string
		write func(l *Listener)
		want  string
	}{
		{"global named", func(l *Listener) { l.WriteGlobalRef(0) }, "(; 0 ;) $g"},
		{"global unnamed", func(l *Listener) { l.WriteGlobalRef(1) }, "1"},
		{"function named", func(l *Listener) { l.WriteFunctionRef(1) }, "(; 1 ;) $main"},
		{"function unnamed", func(l *Listener) { l.WriteFunctionRef(0) }, "0"},
		{"type named", func(l *Listener) { l.WriteTypeRef(2) }, "(; 2 ;) $Point"},
		{"type unnamed", func(l *Listener) { l.WriteTypeRef(12) }, "12"},
		{"field named", func(l *Listener) { l.WriteFieldRef(2, 0) }, "(; 0 ;) $x"},
		{"field of other owner", func(l *Listener) { l.WriteFieldRef(3, 0) }, "0"},
		{"local named", func(l *Listener) { l.WriteLocalRef(1, 3) }, "(; 3 ;) $tmp"},
		{"local of other owner", func(l *Listener) { l.WriteLocalRef(0, 3) }, "3"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l, out := newTestListener(names)
			c.write(l)
			assert.Equal(t, c.want, out.String())
		})
	}
}

func TestReferenceContainsIndex(t *testing.T) {
	for _, index := range []uint32{0, 1, 9, 10, 255, 65536, 1<<32 - 1} {
		i := strconv.FormatUint(uint64(index), 10)
		assert.Equal(t, i, Reference(index, "", false))

		named := Reference(index, "n", true)
		assert.Equal(t, "(; "+i+" ;) $n", named)
		assert.True(t, strings.Contains(named, i))
	}
}

func TestNilNames(t *testing.T) {
	l, out := newTestListener(nil)
	l.WriteTypeRef(4)
	l.WriteLocalRef(0, 1)
	assert.Equal(t, "41", out.String())
}

func TestAddressBias(t *testing.T) {
	l, _ := newTestListener(nil)
	assert.Equal(t, 0, l.CurrentAddress())

	l.Address(5)
	assert.Equal(t, 5, l.CurrentAddress())

	l.SetAddressOffset(10)
	for _, raw := range []int{5, 7, 0, 1024} {
		l.Address(raw)
		assert.Equal(t, raw+10, l.CurrentAddress())
	}

	l.SetAddressOffset(-3)
	l.Address(7)
	assert.Equal(t, 4, l.CurrentAddress())
}
