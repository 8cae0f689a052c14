// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"io"

	"go.uber.org/zap"

	"github.com/wasmback/wasmback/wasm/leb128"
)

// A list of well-known custom sections
const (
	CustomSectionName = "name"
)

var (
	_ Marshaler   = (*NameSection)(nil)
	_ Unmarshaler = (*NameSection)(nil)
)

// NameType is the type of name subsection.
type NameType byte

const (
	NameModule   = NameType(0)
	NameFunction = NameType(1)
	NameLocal    = NameType(2)
	NameTypes    = NameType(4)
	NameGlobal   = NameType(7)
	NameField    = NameType(10)
)

type NameSubsection interface {
	Marshaler
	Unmarshaler

	Type() NameType
}

type ModuleNameSubsection struct {
	Name string
}

func (s *ModuleNameSubsection) Type() NameType {
	return NameModule
}

func (s *ModuleNameSubsection) UnmarshalWASM(r io.Reader) error {
	var err error
	s.Name, err = readUTF8StringUint(r)
	return err
}

func (s *ModuleNameSubsection) MarshalWASM(w io.Writer) error {
	return writeStringUint(w, s.Name)
}

type Naming struct {
	Index uint32
	Name  string
}

// NameMapSubsection names the entries of a single index space (functions, types or globals).
type NameMapSubsection struct {
	Kind  NameType
	Names []Naming
}

func (s *NameMapSubsection) Type() NameType {
	return s.Kind
}

func (s *NameMapSubsection) UnmarshalWASM(r io.Reader) error {
	var err error
	s.Names, err = readNameMap(r)
	return err
}

func (s *NameMapSubsection) MarshalWASM(w io.Writer) error {
	return writeNameMap(w, s.Names)
}

// IndirectNames names the members of a single owner: the locals of a function or the fields
// of a struct type.
type IndirectNames struct {
	Index uint32
	Names []Naming
}

// IndirectNameMapSubsection names locals (keyed by function) or fields (keyed by type).
type IndirectNameMapSubsection struct {
	Kind   NameType
	Owners []IndirectNames
}

func (s *IndirectNameMapSubsection) Type() NameType {
	return s.Kind
}

func (s *IndirectNameMapSubsection) UnmarshalWASM(r io.Reader) error {
	size, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}

	owners := make([]IndirectNames, 0, getInitialCap(size))
	for i := uint32(0); i < size; i++ {
		ind, err := leb128.ReadVarUint32(r)
		if err != nil {
			return err
		}

		names, err := readNameMap(r)
		if err != nil {
			return err
		}
		owners = append(owners, IndirectNames{Index: ind, Names: names})
	}
	s.Owners = owners

	return nil
}

func (s *IndirectNameMapSubsection) MarshalWASM(w io.Writer) error {
	if _, err := leb128.WriteVarUint32(w, uint32(len(s.Owners))); err != nil {
		return err
	}

	for _, owner := range s.Owners {
		if _, err := leb128.WriteVarUint32(w, owner.Index); err != nil {
			return err
		}
		if err := writeNameMap(w, owner.Names); err != nil {
			return err
		}
	}
	return nil
}

// RawNameSubsection holds a subsection this package does not interpret (labels, tables, ...).
type RawNameSubsection struct {
	Kind NameType
	Data []byte
}

func (s *RawNameSubsection) Type() NameType {
	return s.Kind
}

func (s *RawNameSubsection) UnmarshalWASM(r io.Reader) error {
	var err error
	s.Data, err = io.ReadAll(r)
	return err
}

func (s *RawNameSubsection) MarshalWASM(w io.Writer) error {
	_, err := w.Write(s.Data)
	return err
}

// NameSection is a custom section that stores names of modules, functions, locals, types,
// globals and fields for debugging purposes.
type NameSection struct {
	Entries []NameSubsection
}

func (s *NameSection) UnmarshalWASM(r io.Reader) error {
	var entries []NameSubsection
	for {
		typ, err := readByte(r)
		if err == io.EOF {
			s.Entries = entries
			return nil
		} else if err != nil {
			return err
		}

		data, err := readBytesUint(r)
		if err != nil {
			return err
		}

		var sub NameSubsection
		switch kind := NameType(typ); kind {
		case NameModule:
			sub = &ModuleNameSubsection{}
		case NameFunction, NameTypes, NameGlobal:
			sub = &NameMapSubsection{Kind: kind}
		case NameLocal, NameField:
			sub = &IndirectNameMapSubsection{Kind: kind}
		default:
			Logger().Debug("keeping unknown name subsection", zap.Uint8("type", typ))
			sub = &RawNameSubsection{Kind: kind}
		}

		if err = sub.UnmarshalWASM(bytes.NewReader(data)); err != nil {
			return err
		}

		entries = append(entries, sub)
	}
}

func (s *NameSection) MarshalWASM(w io.Writer) error {
	for _, sub := range s.Entries {
		var buf bytes.Buffer
		if err := sub.MarshalWASM(&buf); err != nil {
			return err
		}

		if _, err := w.Write([]byte{byte(sub.Type())}); err != nil {
			return err
		}
		if err := writeBytesUint(w, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// Map returns the direct name map of the given kind, or nil if the section has none.
func (s *NameSection) Map(kind NameType) []Naming {
	for _, sub := range s.Entries {
		if m, ok := sub.(*NameMapSubsection); ok && m.Kind == kind {
			return m.Names
		}
	}
	return nil
}

// IndirectMap returns the indirect name map of the given kind, or nil if the section has none.
func (s *NameSection) IndirectMap(kind NameType) []IndirectNames {
	for _, sub := range s.Entries {
		if m, ok := sub.(*IndirectNameMapSubsection); ok && m.Kind == kind {
			return m.Owners
		}
	}
	return nil
}

// ModuleName returns the module's name, if the section records one.
func (s *NameSection) ModuleName() (string, bool) {
	for _, sub := range s.Entries {
		if m, ok := sub.(*ModuleNameSubsection); ok {
			return m.Name, true
		}
	}
	return "", false
}

func readNameMap(r io.Reader) ([]Naming, error) {
	size, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, err
	}

	nameMap := make([]Naming, 0, getInitialCap(size))
	for i := uint32(0); i < size; i++ {
		ind, err := leb128.ReadVarUint32(r)
		if err != nil {
			return nil, err
		}
		name, err := readUTF8StringUint(r)
		if err != nil {
			return nil, err
		}
		nameMap = append(nameMap, Naming{Index: ind, Name: name})
	}
	return nameMap, nil
}

func writeNameMap(w io.Writer, nameMap []Naming) error {
	if _, err := leb128.WriteVarUint32(w, uint32(len(nameMap))); err != nil {
		return err
	}
	for _, v := range nameMap {
		if _, err := leb128.WriteVarUint32(w, v.Index); err != nil {
			return err
		}
		if err := writeStringUint(w, v.Name); err != nil {
			return err
		}
	}
	return nil
}
