package leb128

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVarUint32(t *testing.T) {
	for _, c := range casesUint {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteVarUint32(&buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, len(c.b), n)
			assert.Equal(t, c.b, buf.Bytes())
		})
	}
}

func TestWriteVarint64(t *testing.T) {
	for _, c := range casesInt {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteVarint64(&buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, len(c.b), n)
			assert.Equal(t, c.b, buf.Bytes())
		})
	}
}

func TestRoundTripUint32(t *testing.T) {
	cases := []struct {
		v    uint32
		size int
	}{
		{0, 1},
		{0x7f, 1},
		{0x80, 2},
		{0x3fff, 2},
		{0x4000, 3},
		{0x1fffff, 3},
		{0x200000, 4},
		{0xfffffff, 4},
		{0x10000000, 5},
		{math.MaxUint32, 5},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteVarUint32(&buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, c.size, n)

			v, err := ReadVarUint32(&buf)
			require.NoError(t, err)
			assert.Equal(t, c.v, v)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestRoundTripSigned(t *testing.T) {
	type reader func(*bytes.Buffer) (int64, error)

	read32 := func(b *bytes.Buffer) (int64, error) {
		v, err := ReadVarint32(b)
		return int64(v), err
	}
	read33 := func(b *bytes.Buffer) (int64, error) { return ReadVarint33(b) }
	read64 := func(b *bytes.Buffer) (int64, error) { return ReadVarint64(b) }

	cases := []struct {
		name string
		read reader
		v    int64
		size int
	}{
		{"i32 zero", read32, 0, 1},
		{"i32 63", read32, 63, 1},
		{"i32 64", read32, 64, 2},
		{"i32 -64", read32, -64, 1},
		{"i32 -65", read32, -65, 2},
		{"i32 max", read32, math.MaxInt32, 5},
		{"i32 min", read32, math.MinInt32, 5},
		{"i33 -1", read33, -1, 1},
		{"i33 -0x40", read33, -0x40, 1},
		{"i33 max", read33, 1<<32 - 1, 5},
		{"i33 min", read33, -1 << 32, 5},
		{"i64 max", read64, math.MaxInt64, 10},
		{"i64 min", read64, math.MinInt64, 10},
		{"i64 2^35", read64, 1 << 35, 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteVarint64(&buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, c.size, n)

			v, err := c.read(&buf)
			require.NoError(t, err)
			assert.Equal(t, c.v, v)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestRoundTripOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		v    int64
		read func(*bytes.Buffer) error
	}{
		{"i32 above max", math.MaxInt32 + 1, func(b *bytes.Buffer) error { _, err := ReadVarint32(b); return err }},
		{"i32 below min", math.MinInt32 - 1, func(b *bytes.Buffer) error { _, err := ReadVarint32(b); return err }},
		{"i33 above max", 1 << 32, func(b *bytes.Buffer) error { _, err := ReadVarint33(b); return err }},
		{"i33 below min", -1<<32 - 1, func(b *bytes.Buffer) error { _, err := ReadVarint33(b); return err }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := WriteVarint64(&buf, c.v)
			require.NoError(t, err)
			assert.ErrorIs(t, c.read(&buf), ErrOverflow)
		})
	}
}
