package code

import (
	"fmt"
	"io"
)

type Instruction struct {
	Opcode    byte   `json:"opcode"`
	Immediate uint64 `json:"immediate"`
}

func (i *Instruction) Funcidx() uint32 {
	return uint32(i.Immediate)
}

func (i *Instruction) Localidx() uint32 {
	return uint32(i.Immediate)
}

func (i *Instruction) Globalidx() uint32 {
	return uint32(i.Immediate)
}

func (i *Instruction) I32() int32 {
	return int32(i.Immediate)
}

func (i *Instruction) I64() int64 {
	return int64(i.Immediate)
}

// Stack returns the number of values the instruction pops and pushes. Calls are not
// described by their encoding alone and report ok == false.
func (i *Instruction) Stack() (pop, push int, ok bool) {
	switch {
	case i.Opcode == OpCall:
		return 0, 0, false
	case i.Opcode == OpUnreachable, i.Opcode == OpNop, i.Opcode == OpEnd, i.Opcode == OpReturn:
		return 0, 0, true
	case i.Opcode == OpDrop, i.Opcode == OpLocalSet, i.Opcode == OpGlobalSet:
		return 1, 0, true
	case i.Opcode == OpLocalGet, i.Opcode == OpGlobalGet, i.Opcode == OpI32Const, i.Opcode == OpI64Const:
		return 0, 1, true
	case i.Opcode == OpLocalTee:
		return 1, 1, true
	case i.IsUnary():
		return 1, 1, true
	case i.IsBinary():
		return 2, 1, true
	}
	return 0, 0, false
}

// IsUnary returns true for numeric instructions that take a single operand.
func (i *Instruction) IsUnary() bool {
	switch i.Opcode {
	case OpI32Eqz, OpI64Eqz,
		OpI32Clz, OpI32Ctz, OpI32Popcnt,
		OpI64Clz, OpI64Ctz, OpI64Popcnt,
		OpI32WrapI64, OpI64ExtendI32S, OpI64ExtendI32U,
		OpI32Extend8S, OpI32Extend16S, OpI64Extend8S, OpI64Extend16S, OpI64Extend32S:
		return true
	}
	return false
}

// IsBinary returns true for numeric instructions that take two operands.
func (i *Instruction) IsBinary() bool {
	switch {
	case i.Opcode >= OpI32Eq && i.Opcode <= OpI32GeU:
		return true
	case i.Opcode >= OpI64Eq && i.Opcode <= OpI64GeU:
		return true
	case i.Opcode >= OpI32Add && i.Opcode <= OpI32Rotr:
		return true
	case i.Opcode >= OpI64Add && i.Opcode <= OpI64Rotr:
		return true
	}
	return false
}

func (i *Instruction) Encode(w io.Writer) error {
	return encodeInstruction(w, *i)
}

func (i *Instruction) String() string {
	switch i.Opcode {
	case OpCall:
		return fmt.Sprintf("call %d", i.Funcidx())
	case OpLocalGet, OpLocalSet, OpLocalTee:
		return fmt.Sprintf("%s %v", i.OpString(), i.Localidx())
	case OpGlobalGet, OpGlobalSet:
		return fmt.Sprintf("%s %v", i.OpString(), i.Globalidx())
	case OpI32Const:
		return fmt.Sprintf("i32.const %d", i.I32())
	case OpI64Const:
		return fmt.Sprintf("i64.const %d", i.I64())
	default:
		return i.OpString()
	}
}

func (i *Instruction) OpString() string {
	if name, ok := opNames[i.Opcode]; ok {
		return name
	}
	return fmt.Sprintf("<unknown opcode %#02x>", i.Opcode)
}
