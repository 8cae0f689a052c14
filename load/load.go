// Package load reads WebAssembly modules from files.
package load

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/wasmback/wasmback/wasm"
)

// NotBinaryError is returned for inputs that do not start with the binary module header.
type NotBinaryError struct {
	Magic uint32
}

func (e *NotBinaryError) Error() string {
	return fmt.Sprintf("load: not a binary module (magic %#08x)", e.Magic)
}

func LoadModule(r io.Reader) (*wasm.Module, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(4)
	if err != nil {
		return nil, err
	}
	magic := binary.LittleEndian.Uint32(buf)
	if magic != wasm.Magic {
		return nil, &NotBinaryError{Magic: magic}
	}
	return wasm.DecodeModule(br)
}

func LoadFile(path string) (*wasm.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := LoadModule(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
