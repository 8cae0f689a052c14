// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wasmback/wasmback/wasm/internal/readpos"
	"github.com/wasmback/wasmback/wasm/leb128"
)

// Section is a generic WASM section interface.
type Section interface {
	// SectionID returns a section ID for WASM encoding. Should be unique across types.
	SectionID() SectionID
	// GetRawSection Returns an embedded RawSection pointer to populate generic fields.
	GetRawSection() *RawSection
	// ReadPayload reads a section payload. The reader's position is absolute within the module.
	ReadPayload(r *readpos.ReadPos) error
}

// SectionID is a 1-byte code that encodes the section code of both known and custom sections.
type SectionID uint8

const (
	SectionIDCustom    SectionID = 0
	SectionIDType      SectionID = 1
	SectionIDImport    SectionID = 2
	SectionIDFunction  SectionID = 3
	SectionIDTable     SectionID = 4
	SectionIDMemory    SectionID = 5
	SectionIDGlobal    SectionID = 6
	SectionIDExport    SectionID = 7
	SectionIDStart     SectionID = 8
	SectionIDElement   SectionID = 9
	SectionIDCode      SectionID = 10
	SectionIDData      SectionID = 11
	SectionIDDataCount SectionID = 12
	SectionIDTag       SectionID = 13
)

func (s SectionID) String() string {
	n, ok := map[SectionID]string{
		SectionIDCustom:    "custom",
		SectionIDType:      "type",
		SectionIDImport:    "import",
		SectionIDFunction:  "function",
		SectionIDTable:     "table",
		SectionIDMemory:    "memory",
		SectionIDGlobal:    "global",
		SectionIDExport:    "export",
		SectionIDStart:     "start",
		SectionIDElement:   "element",
		SectionIDCode:      "code",
		SectionIDData:      "data",
		SectionIDDataCount: "datacount",
		SectionIDTag:       "tag",
	}[s]
	if !ok {
		return "unknown"
	}
	return n
}

// sectionOrder gives the position of each non-custom section in the prescribed order.
var sectionOrder = map[SectionID]int{
	SectionIDType:      1,
	SectionIDImport:    2,
	SectionIDFunction:  3,
	SectionIDTable:     4,
	SectionIDMemory:    5,
	SectionIDTag:       6,
	SectionIDGlobal:    7,
	SectionIDExport:    8,
	SectionIDStart:     9,
	SectionIDElement:   10,
	SectionIDDataCount: 11,
	SectionIDCode:      12,
	SectionIDData:      13,
}

// RawSection is a declared section in a WASM module. Start and End are the absolute offsets
// of the section payload.
type RawSection struct {
	Start int
	End   int

	ID    SectionID
	Bytes []byte
}

func (s *RawSection) SectionID() SectionID {
	return s.ID
}

func (s *RawSection) GetRawSection() *RawSection {
	return s
}

// ReadPayload retains the payload without decoding it.
func (s *RawSection) ReadPayload(r *readpos.ReadPos) error {
	return nil
}

type InvalidSectionIDError SectionID

func (e InvalidSectionIDError) Error() string {
	return fmt.Sprintf("wasm: malformed section id %d", uint8(e))
}

var ErrSectionOrder = errors.New("wasm: sections must occur at most once and in the prescribed order")

type MissingSectionError SectionID

func (e MissingSectionError) Error() string {
	return fmt.Sprintf("wasm: missing section %s", SectionID(e).String())
}

type sectionsReader struct {
	lastSecOrder int // order of the previous non-custom section
	m            *Module
}

func newSectionsReader(m *Module) *sectionsReader {
	return &sectionsReader{m: m}
}

func (s *sectionsReader) readSections(r *readpos.ReadPos) error {
	for {
		done, err := s.readSection(r)
		switch {
		case err != nil:
			return err
		case done:
			return nil
		}
	}
}

// reads a valid section from r. The first return value is true if and only if
// the module has been completely read.
func (sr *sectionsReader) readSection(r *readpos.ReadPos) (bool, error) {
	m := sr.m

	id, err := r.ReadByte()
	if err == io.EOF {
		return true, nil
	} else if err != nil {
		return false, err
	}

	s := RawSection{ID: SectionID(id)}
	if s.ID != SectionIDCustom {
		order, ok := sectionOrder[s.ID]
		if !ok {
			return false, InvalidSectionIDError(id)
		}
		if order <= sr.lastSecOrder {
			return false, ErrSectionOrder
		}
		sr.lastSecOrder = order
	}

	payloadDataLen, err := leb128.ReadVarUint32(r)
	if err != nil {
		return false, err
	}

	s.Start = r.CurPos
	Logger().Debug("reading section",
		zap.Stringer("id", s.ID),
		zap.Int("start", s.Start),
		zap.Uint32("size", payloadDataLen))

	if s.Bytes, err = readBytes(r, payloadDataLen); err != nil {
		return false, fmt.Errorf("wasm: reading %v section: %w", s.ID, err)
	}
	s.End = r.CurPos

	var sec Section
	switch s.ID {
	case SectionIDCustom:
		cs := &SectionCustom{}
		m.Customs = append(m.Customs, cs)
		sec = cs
	case SectionIDType:
		m.Types = &SectionTypes{}
		sec = m.Types
	case SectionIDImport:
		m.Import = &SectionImports{}
		sec = m.Import
	case SectionIDFunction:
		m.Function = &SectionFunctions{}
		sec = m.Function
	case SectionIDGlobal:
		m.Global = &SectionGlobals{}
		sec = m.Global
	case SectionIDExport:
		m.Export = &SectionExports{}
		sec = m.Export
	default:
		sec = &RawSection{}
	}

	payload := &readpos.ReadPos{R: bytes.NewReader(s.Bytes), CurPos: s.Start}
	if err = sec.ReadPayload(payload); err != nil {
		Logger().Debug("section payload error", zap.Stringer("id", s.ID), zap.Error(err))
		return false, fmt.Errorf("wasm: %v section at offset %#x: %w", s.ID, payload.CurPos, err)
	}
	if _, raw := sec.(*RawSection); !raw && payload.CurPos != s.End {
		return false, fmt.Errorf("wasm: %v section size mismatch", s.ID)
	}
	*sec.GetRawSection() = s
	m.Sections = append(m.Sections, sec)
	return false, nil
}

var _ Section = (*SectionCustom)(nil)

type SectionCustom struct {
	RawSection
	Name string
	Data []byte
}

func (s *SectionCustom) SectionID() SectionID {
	return SectionIDCustom
}

func (s *SectionCustom) ReadPayload(r *readpos.ReadPos) error {
	var err error
	s.Name, err = readUTF8StringUint(r)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.Data = data
	return nil
}

var _ Section = (*SectionTypes)(nil)

// TypeEntry is a single type definition together with its index in the type index space
// and the absolute offset of its encoding.
type TypeEntry struct {
	SubType

	Offset int
	Index  uint32
}

// RecGroup describes a recursion group. Groups that were not encoded with an explicit rec
// prefix hold exactly one type.
type RecGroup struct {
	Offset   int
	Explicit bool
	First    uint32
	Count    uint32
}

// SectionTypes declares all type definitions that will be used in a module.
type SectionTypes struct {
	RawSection
	Groups  []RecGroup
	Entries []TypeEntry
}

func (*SectionTypes) SectionID() SectionID {
	return SectionIDType
}

func (s *SectionTypes) ReadPayload(r *readpos.ReadPos) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}

	s.Groups = make([]RecGroup, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		group := RecGroup{Offset: r.CurPos, First: uint32(len(s.Entries))}

		form, err := r.ReadByte()
		if err != nil {
			return err
		}
		if form != typeRec {
			if err := s.readEntry(r, group.Offset, form); err != nil {
				return err
			}
			group.Count = 1
		} else {
			group.Explicit = true
			if group.Count, err = leb128.ReadVarUint32(r); err != nil {
				return err
			}
			for j := uint32(0); j < group.Count; j++ {
				offset := r.CurPos
				form, err := r.ReadByte()
				if err != nil {
					return err
				}
				if err := s.readEntry(r, offset, form); err != nil {
					return err
				}
			}
		}
		s.Groups = append(s.Groups, group)
	}
	return nil
}

func (s *SectionTypes) readEntry(r *readpos.ReadPos, offset int, form byte) error {
	sub, err := readSubType(r, form)
	if err != nil {
		return err
	}
	s.Entries = append(s.Entries, TypeEntry{SubType: sub, Offset: offset, Index: uint32(len(s.Entries))})
	return nil
}

var _ Section = (*SectionImports)(nil)

// SectionImports declares all imports that will be used in the module.
type SectionImports struct {
	RawSection
	Entries []ImportEntry
}

func (*SectionImports) SectionID() SectionID {
	return SectionIDImport
}

func (s *SectionImports) ReadPayload(r *readpos.ReadPos) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	s.Entries = make([]ImportEntry, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		entry := ImportEntry{Offset: r.CurPos}
		if err = entry.UnmarshalWASM(r); err != nil {
			return err
		}
		s.Entries = append(s.Entries, entry)
	}
	return nil
}

func (e *ImportEntry) UnmarshalWASM(r io.Reader) error {
	var err error
	if e.ModuleName, err = readUTF8StringUint(r); err != nil {
		return err
	}
	if e.FieldName, err = readUTF8StringUint(r); err != nil {
		return err
	}

	kind, err := readByte(r)
	if err != nil {
		return err
	}
	switch External(kind) {
	case ExternalFunction:
		Logger().Debug("importing function", zap.String("module", e.ModuleName), zap.String("field", e.FieldName))
		var t uint32
		if t, err = leb128.ReadVarUint32(r); err == nil {
			e.Type = FuncImport{Type: t}
		}
	case ExternalTable:
		Logger().Debug("importing table", zap.String("module", e.ModuleName), zap.String("field", e.FieldName))
		var t TableType
		if err = t.UnmarshalWASM(r); err == nil {
			e.Type = TableImport{Type: t}
		}
	case ExternalMemory:
		Logger().Debug("importing memory", zap.String("module", e.ModuleName), zap.String("field", e.FieldName))
		var l Limits
		if err = l.UnmarshalWASM(r); err == nil {
			e.Type = MemoryImport{Type: l}
		}
	case ExternalGlobal:
		Logger().Debug("importing global var", zap.String("module", e.ModuleName), zap.String("field", e.FieldName))
		var g GlobalType
		if err = g.UnmarshalWASM(r); err == nil {
			e.Type = GlobalVarImport{Type: g}
		}
	case ExternalTag:
		Logger().Debug("importing tag", zap.String("module", e.ModuleName), zap.String("field", e.FieldName))
		var t TagImport
		if t.Type, err = readTagType(r); err == nil {
			e.Type = t
		}
	default:
		return InvalidExternalError(kind)
	}
	return err
}

func readTagType(r io.Reader) (uint32, error) {
	attribute, err := readByte(r)
	if err != nil {
		return 0, err
	}
	if attribute != 0 {
		return 0, fmt.Errorf("wasm: invalid tag attribute %#x", attribute)
	}
	return leb128.ReadVarUint32(r)
}

var _ Section = (*SectionFunctions)(nil)

// FunctionEntry declares a function by the index of its signature.
type FunctionEntry struct {
	Offset int
	Type   uint32
}

// SectionFunctions declares the signature of all functions defined in the module (in the code section)
type SectionFunctions struct {
	RawSection
	Entries []FunctionEntry
}

func (*SectionFunctions) SectionID() SectionID {
	return SectionIDFunction
}

func (s *SectionFunctions) ReadPayload(r *readpos.ReadPos) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	s.Entries = make([]FunctionEntry, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		entry := FunctionEntry{Offset: r.CurPos}
		if entry.Type, err = leb128.ReadVarUint32(r); err != nil {
			return err
		}
		s.Entries = append(s.Entries, entry)
	}
	return nil
}

var _ Section = (*SectionGlobals)(nil)

// GlobalEntry declares a global variable. Its initializer is skipped.
type GlobalEntry struct {
	Offset int
	Type   GlobalType
}

// SectionGlobals defines the value of all global variables declared in a module.
type SectionGlobals struct {
	RawSection
	Globals []GlobalEntry
}

func (*SectionGlobals) SectionID() SectionID {
	return SectionIDGlobal
}

func (s *SectionGlobals) ReadPayload(r *readpos.ReadPos) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	Logger().Debug("global entries", zap.Uint32("count", count))
	s.Globals = make([]GlobalEntry, 0, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		entry := GlobalEntry{Offset: r.CurPos}
		if err = entry.Type.UnmarshalWASM(r); err != nil {
			return err
		}
		if err = skipConstExpr(r); err != nil {
			return err
		}
		s.Globals = append(s.Globals, entry)
	}
	return nil
}

var _ Section = (*SectionExports)(nil)

// SectionExports declares the export section of a module
type SectionExports struct {
	RawSection
	Entries []ExportEntry
}

func (*SectionExports) SectionID() SectionID {
	return SectionIDExport
}

func (s *SectionExports) ReadPayload(r *readpos.ReadPos) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	s.Entries = make([]ExportEntry, 0, getInitialCap(count))
	names := make(map[string]struct{}, getInitialCap(count))
	for i := uint32(0); i < count; i++ {
		entry := ExportEntry{Offset: r.CurPos}
		if err = entry.UnmarshalWASM(r); err != nil {
			return err
		}
		if _, exists := names[entry.FieldStr]; exists {
			return DuplicateExportError(entry.FieldStr)
		}
		names[entry.FieldStr] = struct{}{}
		s.Entries = append(s.Entries, entry)
	}
	return nil
}

type DuplicateExportError string

func (e DuplicateExportError) Error() string {
	return fmt.Sprintf("wasm: duplicate export %q", string(e))
}

// ExportEntry represents an exported entry by the module
type ExportEntry struct {
	Offset   int
	FieldStr string
	Kind     External
	Index    uint32
}

func (e *ExportEntry) UnmarshalWASM(r io.Reader) error {
	var err error
	if e.FieldStr, err = readUTF8StringUint(r); err != nil {
		return err
	}
	kind, err := readByte(r)
	if err != nil {
		return err
	}
	if kind > byte(ExternalTag) {
		return InvalidExternalError(kind)
	}
	e.Kind = External(kind)
	e.Index, err = leb128.ReadVarUint32(r)
	return err
}
