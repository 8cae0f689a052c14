// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/wasmback/wasmback/wasm/internal/readpos"
)

var ErrInvalidMagic = errors.New("wasm: magic header not detected")

const (
	Magic   uint32 = 0x6d736100
	Version uint32 = 0x1
)

// UnknownVersionError is returned for binaries that declare an unsupported version.
type UnknownVersionError uint32

func (e UnknownVersionError) Error() string {
	return fmt.Sprintf("wasm: unknown binary version %d", uint32(e))
}

// Module represents a decoded WebAssembly module. Sections that this package does not
// interpret are retained as RawSections in Sections.
type Module struct {
	Version  uint32
	Sections []Section

	Types    *SectionTypes
	Import   *SectionImports
	Function *SectionFunctions
	Global   *SectionGlobals
	Export   *SectionExports
	Customs  []*SectionCustom
}

// Names returns the names section. If no names section exists, this function returns a MissingSectionError.
func (m *Module) Names() (*NameSection, error) {
	s := m.Custom(CustomSectionName)
	if s == nil {
		return nil, MissingSectionError(SectionIDCustom)
	}

	var names NameSection
	if err := names.UnmarshalWASM(bytes.NewReader(s.Data)); err != nil {
		return nil, fmt.Errorf("wasm: decoding name section: %w", err)
	}

	return &names, nil
}

// Custom returns a custom section with a specific name, if it exists.
func (m *Module) Custom(name string) *SectionCustom {
	for _, s := range m.Customs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ImportedFunctions returns the function imports in index order.
func (m *Module) ImportedFunctions() []ImportEntry {
	return m.imports(ExternalFunction)
}

// ImportedGlobals returns the global imports in index order.
func (m *Module) ImportedGlobals() []ImportEntry {
	return m.imports(ExternalGlobal)
}

func (m *Module) imports(kind External) []ImportEntry {
	if m.Import == nil {
		return nil
	}
	var entries []ImportEntry
	for _, e := range m.Import.Entries {
		if e.Type.Kind() == kind {
			entries = append(entries, e)
		}
	}
	return entries
}

// FunctionCount returns the size of the function index space.
func (m *Module) FunctionCount() int {
	n := len(m.ImportedFunctions())
	if m.Function != nil {
		n += len(m.Function.Entries)
	}
	return n
}

// FunctionType returns the type index of the function with the given index in the function
// index space. Imported functions come first.
func (m *Module) FunctionType(index uint32) (uint32, bool) {
	imported := m.ImportedFunctions()
	if int(index) < len(imported) {
		return imported[index].Type.(FuncImport).Type, true
	}
	index -= uint32(len(imported))
	if m.Function == nil || int(index) >= len(m.Function.Entries) {
		return 0, false
	}
	return m.Function.Entries[index].Type, true
}

// Type returns the type definition with the given index.
func (m *Module) Type(index uint32) (*TypeEntry, bool) {
	if m.Types == nil || int(index) >= len(m.Types.Entries) {
		return nil, false
	}
	return &m.Types.Entries[index], true
}

// DecodeModule decodes a WASM module.
func DecodeModule(r io.Reader) (*Module, error) {
	reader := &readpos.ReadPos{
		R:      r,
		CurPos: 0,
	}
	m := &Module{}
	magic, err := readU32(reader)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	if m.Version, err = readU32(reader); err != nil {
		return nil, err
	}
	if m.Version != Version {
		return nil, UnknownVersionError(m.Version)
	}

	err = newSectionsReader(m).readSections(reader)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// MustDecode decodes a WASM module and panics on failure.
func MustDecode(r io.Reader) *Module {
	m, err := DecodeModule(r)
	if err != nil {
		panic(fmt.Errorf("decoding module: %w", err))
	}
	return m
}
