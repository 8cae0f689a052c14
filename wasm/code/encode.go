package code

import (
	"fmt"
	"io"

	"github.com/wasmback/wasmback/wasm/leb128"
)

// UnknownOpcodeError is returned when encoding an instruction outside of this package's subset.
type UnknownOpcodeError byte

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("code: unknown opcode %#02x", byte(e))
}

func encodeInstruction(w io.Writer, instr Instruction) error {
	if _, ok := opNames[instr.Opcode]; !ok {
		return UnknownOpcodeError(instr.Opcode)
	}
	if _, err := w.Write([]byte{instr.Opcode}); err != nil {
		return err
	}

	switch instr.Opcode {
	case OpCall, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet:
		// Index encoding
		if _, err := leb128.WriteVarUint32(w, uint32(instr.Immediate)); err != nil {
			return err
		}
	case OpI32Const:
		if _, err := leb128.WriteVarint64(w, int64(int32(instr.Immediate))); err != nil {
			return err
		}
	case OpI64Const:
		if _, err := leb128.WriteVarint64(w, int64(instr.Immediate)); err != nil {
			return err
		}
	default:
		// Single-byte encoding; already done
	}

	return nil
}

// Encode writes a function body. The body must be terminated by an end instruction.
func Encode(w io.Writer, body []Instruction) error {
	for {
		if len(body) == 0 {
			return io.ErrUnexpectedEOF
		}

		if err := encodeInstruction(w, body[0]); err != nil {
			return err
		}
		if body[0].Opcode == OpEnd && len(body) == 1 {
			return nil
		}
		body = body[1:]
	}
}
