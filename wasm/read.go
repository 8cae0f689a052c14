// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/wasmback/wasmback/wasm/leb128"
)

// ErrInvalidUTF8 is returned when a name is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("wasm: invalid UTF-8 encoding")

// Marshaler is implemented by types that can write their binary encoding.
type Marshaler interface {
	MarshalWASM(w io.Writer) error
}

// Unmarshaler is implemented by types that can read their binary encoding.
type Unmarshaler interface {
	UnmarshalWASM(r io.Reader) error
}

// getInitialCap bounds the initial capacity of slices sized by untrusted counts.
func getInitialCap(count uint32) int {
	if count > 4096 {
		return 4096
	}
	return int(count)
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readBytes(r io.Reader, n uint32) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, err
	}
	if len(data) != int(n) {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}

func readBytesUint(r io.Reader) ([]byte, error) {
	n, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, err
	}
	return readBytes(r, n)
}

func readUTF8StringUint(r io.Reader) (string, error) {
	b, err := readBytesUint(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

func skipBytes(r io.Reader, n int64) error {
	copied, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF && copied < n {
		return io.ErrUnexpectedEOF
	}
	return err
}

func writeBytesUint(w io.Writer, p []byte) error {
	if _, err := leb128.WriteVarUint32(w, uint32(len(p))); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

func writeStringUint(w io.Writer, s string) error {
	return writeBytesUint(w, []byte(s))
}
