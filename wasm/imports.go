// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import "fmt"

// External describes the kind of the entry being imported or exported.
type External uint8

const (
	ExternalFunction External = 0
	ExternalTable    External = 1
	ExternalMemory   External = 2
	ExternalGlobal   External = 3
	ExternalTag      External = 4
)

func (e External) String() string {
	switch e {
	case ExternalFunction:
		return "func"
	case ExternalTable:
		return "table"
	case ExternalMemory:
		return "memory"
	case ExternalGlobal:
		return "global"
	case ExternalTag:
		return "tag"
	default:
		return "unknown"
	}
}

type InvalidExternalError uint8

func (e InvalidExternalError) Error() string {
	return fmt.Sprintf("wasm: invalid external_kind value %d", uint8(e))
}

// Import is an interface implemented by types that can be imported by a WebAssembly module.
type Import interface {
	Kind() External
	isImport()
}

// ImportEntry describes an import statement in a Wasm module.
type ImportEntry struct {
	Offset     int
	ModuleName string
	FieldName  string

	// Type is one of FuncImport, TableImport, MemoryImport, GlobalVarImport or TagImport.
	Type Import
}

type FuncImport struct {
	Type uint32
}

func (FuncImport) isImport() {}
func (FuncImport) Kind() External {
	return ExternalFunction
}

type TableImport struct {
	Type TableType
}

func (TableImport) isImport() {}
func (TableImport) Kind() External {
	return ExternalTable
}

type MemoryImport struct {
	Type Limits
}

func (MemoryImport) isImport() {}
func (MemoryImport) Kind() External {
	return ExternalMemory
}

type GlobalVarImport struct {
	Type GlobalType
}

func (GlobalVarImport) isImport() {}
func (GlobalVarImport) Kind() External {
	return ExternalGlobal
}

// TagImport imports an exception tag. Type is the index of the tag's function signature.
type TagImport struct {
	Type uint32
}

func (TagImport) isImport() {}
func (TagImport) Kind() External {
	return ExternalTag
}
