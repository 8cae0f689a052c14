package code

func Unreachable() Instruction {
	return Instruction{Opcode: OpUnreachable}
}

func Nop() Instruction {
	return Instruction{Opcode: OpNop}
}

func End() Instruction {
	return Instruction{Opcode: OpEnd}
}

func Return() Instruction {
	return Instruction{Opcode: OpReturn}
}

func Call(funcidx uint32) Instruction {
	return Instruction{Opcode: OpCall, Immediate: uint64(funcidx)}
}

func Drop() Instruction {
	return Instruction{Opcode: OpDrop}
}

func LocalGet(localidx uint32) Instruction {
	return Instruction{Opcode: OpLocalGet, Immediate: uint64(localidx)}
}

func LocalSet(localidx uint32) Instruction {
	return Instruction{Opcode: OpLocalSet, Immediate: uint64(localidx)}
}

func LocalTee(localidx uint32) Instruction {
	return Instruction{Opcode: OpLocalTee, Immediate: uint64(localidx)}
}

func GlobalGet(globalidx uint32) Instruction {
	return Instruction{Opcode: OpGlobalGet, Immediate: uint64(globalidx)}
}

func GlobalSet(globalidx uint32) Instruction {
	return Instruction{Opcode: OpGlobalSet, Immediate: uint64(globalidx)}
}

func I32Const(v int32) Instruction {
	return Instruction{Opcode: OpI32Const, Immediate: uint64(v)}
}

func I64Const(v int64) Instruction {
	return Instruction{Opcode: OpI64Const, Immediate: uint64(v)}
}

// Numeric returns an instruction with no immediate, e.g. Numeric(OpI32DivU).
func Numeric(opcode byte) Instruction {
	return Instruction{Opcode: opcode}
}
