// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import (
	"bytes"
	"fmt"
	"io"
	"testing"
)

var casesUint = []struct {
	v uint32
	b []byte
}{
	{b: []byte{0x08}, v: 8},
	{b: []byte{0x80, 0x7f}, v: 16256},
	{b: []byte{0x80, 0x80, 0x80, 0xfd, 0x07}, v: 2141192192},
	{b: []byte{0xe5, 0x8e, 0x26}, v: 624485},
	{b: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, v: 0xffffffff},
}

var casesInt = []struct {
	v int64
	b []byte
}{
	{b: []byte{0xff, 0x7e}, v: -129},
	{b: []byte{0xe4, 0x00}, v: 100},
	{b: []byte{0x80, 0x80, 0x80, 0xfd, 0x07}, v: 2141192192},
	{b: []byte{0x7f}, v: -1},
	{b: []byte{0xc0, 0xbb, 0x78}, v: -123456},
}

func TestReadVarUint32(t *testing.T) {
	for _, c := range casesUint {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			n, err := ReadVarUint32(bytes.NewReader(c.b))
			if err != nil {
				t.Fatal(err)
			}
			if n != c.v {
				t.Fatalf("got = %d; want = %d", n, c.v)
			}
		})
	}
}

func TestReadVarint64(t *testing.T) {
	for _, c := range casesInt {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			n, err := ReadVarint64(bytes.NewReader(c.b))
			if err != nil {
				t.Fatal(err)
			}
			if n != c.v {
				t.Fatalf("got = %d; want = %d", n, c.v)
			}
		})
	}
}

func TestReadVarint33(t *testing.T) {
	// -16 is funcref as a heap type; 0x40 is the empty block type.
	n, err := ReadVarint33(bytes.NewReader([]byte{0x70}))
	if err != nil {
		t.Fatal(err)
	}
	if n != -16 {
		t.Fatalf("got = %d; want = -16", n)
	}

	n, err = ReadVarint33(bytes.NewReader([]byte{0x40}))
	if err != nil {
		t.Fatal(err)
	}
	if n != -64 {
		t.Fatalf("got = %d; want = -64", n)
	}
}

func TestReadOverflow(t *testing.T) {
	if _, err := ReadVarUint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x1f})); err != ErrOverflow {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ReadVarint32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00})); err != ErrOverflow {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadEOF(t *testing.T) {
	if _, err := ReadVarUint32(bytes.NewReader(nil)); err != io.EOF {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ReadVarUint32(bytes.NewReader([]byte{0x80})); err != io.ErrUnexpectedEOF {
		t.Fatalf("unexpected error: %v", err)
	}
}
