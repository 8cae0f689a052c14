package wasm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsUnpacked(t *testing.T) {
	assert.Equal(t, ValueType(I64), AsUnpacked(Unpack(I64)))
	assert.Equal(t, ValueType(CompositeReference{Index: 3}), AsUnpacked(Unpack(CompositeReference{Index: 3})))
	assert.Nil(t, AsUnpacked(I8))
	assert.Nil(t, AsUnpacked(I16))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "int64", NumberI64.String())
	assert.Equal(t, "NumberKind(9)", NumberKind(9).String())
	assert.Equal(t, "i31", RefI31.String())
	assert.Equal(t, "ReferenceKind(6)", ReferenceKind(6).String())
	assert.Equal(t, "int16", PackedI16.String())
	assert.Equal(t, "array", CompositeArray.String())
	assert.Equal(t, "datacount", SectionIDDataCount.String())
	assert.Equal(t, "tag", ExternalTag.String())
}

func TestLimits(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want Limits
	}{
		{"min", []byte{0x00, 0x01}, Limits{Flags: 0, Initial: 1}},
		{"max", []byte{0x01, 0x01, 0x80, 0x02}, Limits{Flags: 1, Initial: 1, Maximum: 256}},
		{"memory64", []byte{0x05, 0x02, 0x03}, Limits{Flags: 5, Initial: 2, Maximum: 3}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var l Limits
			assert.NoError(t, l.UnmarshalWASM(bytesReader(c.raw)))
			assert.Equal(t, c.want, l)
		})
	}

	var l Limits
	assert.Error(t, l.UnmarshalWASM(bytesReader([]byte{0x08, 0x00})))
}

func TestSkipConstExpr(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		ok   bool
	}{
		{"i32.const", []byte{0x41, 0x7f, 0x0b}, true},
		{"extended", []byte{0x23, 0x00, 0x41, 0x08, 0x6a, 0x0b}, true},
		{"struct.new", []byte{0xd0, 0x6e, 0xfb, 0x00, 0x02, 0x0b}, true},
		{"v128.const", append(append([]byte{0xfd, 0x0c}, make([]byte, 16)...), 0x0b), true},
		{"call", []byte{0x10, 0x00, 0x0b}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := skipConstExpr(bytesReader(c.raw))
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, UnsupportedInitOpcodeError(0x10), err)
			}
		})
	}
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
