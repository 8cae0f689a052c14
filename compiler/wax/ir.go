// Package wax is the expression tree produced by the lowering pass.
package wax

import (
	"fmt"

	"github.com/willf/bitset"

	"github.com/wasmback/wasmback/wasm"
	"github.com/wasmback/wasmback/wasm/code"
)

type Flags int32

const (
	FlagsLoadLocal = 1 << iota
	FlagsLoadGlobal
	FlagsCall
	FlagsMayTrap

	// FlagsImpure marks expressions whose value depends on more than their operands.
	FlagsImpure = FlagsLoadLocal | FlagsLoadGlobal | FlagsCall
)

// Kind is the shape of an expression.
type Kind int

const (
	KindConst Kind = iota
	KindLocal
	KindUnary
	KindBinary
	KindConversion
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindLocal:
		return "local"
	case KindUnary:
		return "unary"
	case KindBinary:
		return "binary"
	case KindConversion:
		return "conversion"
	case KindCall:
		return "call"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FunctionRef is a callable function. Index is its position in the function index space of
// the module being assembled.
type FunctionRef struct {
	Index   uint32
	Name    string
	Params  []wasm.ValueType
	Results []wasm.ValueType
}

// Expression is a node in a lowered expression tree. Uses are the operands, in evaluation
// order. Flags and Locals summarize the node together with all of its operands.
type Expression struct {
	Instr    code.Instruction
	Uses     []*Expression
	Type     wasm.ValueType
	Function *FunctionRef
	Flags    Flags
	Locals   bitset.BitSet
}

func newExpression(instr code.Instruction, t wasm.ValueType, flags Flags, uses ...*Expression) *Expression {
	x := &Expression{Instr: instr, Uses: uses, Type: t, Flags: flags}
	for _, u := range uses {
		x.Flags |= u.Flags
		x.Locals.InPlaceUnion(&u.Locals)
	}
	return x
}

// IntType selects between the 32- and 64-bit integer instructions.
type IntType int

const (
	I32 IntType = iota
	I64
)

func (t IntType) ValueType() wasm.ValueType {
	if t == I64 {
		return wasm.I64
	}
	return wasm.I32
}

// IntBinaryOp is a two-operand integer instruction. Arithmetic ops produce the operand type;
// comparisons produce i32.
type IntBinaryOp int

const (
	IntAdd IntBinaryOp = iota
	IntSub
	IntMul
	IntDivS
	IntDivU
	IntRemS
	IntRemU
	IntAnd
	IntOr
	IntXor
	IntShl
	IntShrS
	IntShrU
	IntRotl
	IntRotr

	IntEq
	IntNe
	IntLtS
	IntLtU
	IntGtS
	IntGtU
	IntLeS
	IntLeU
	IntGeS
	IntGeU
)

func (op IntBinaryOp) opcode(t IntType) byte {
	if op < IntEq {
		base := byte(code.OpI32Add)
		if t == I64 {
			base = code.OpI64Add
		}
		return base + byte(op)
	}
	base := byte(code.OpI32Eq)
	if t == I64 {
		base = code.OpI64Eq
	}
	return base + byte(op-IntEq)
}

// IntUnaryOp is a one-operand integer instruction.
type IntUnaryOp int

const (
	IntClz IntUnaryOp = iota
	IntCtz
	IntPopcnt
	IntEqz
)

func (op IntUnaryOp) opcode(t IntType) byte {
	switch {
	case op == IntEqz && t == I64:
		return code.OpI64Eqz
	case op == IntEqz:
		return code.OpI32Eqz
	case t == I64:
		return code.OpI64Clz + byte(op)
	default:
		return code.OpI32Clz + byte(op)
	}
}

func IntBinary(t IntType, op IntBinaryOp, a, b *Expression) *Expression {
	var flags Flags
	switch op {
	case IntDivS, IntDivU, IntRemS, IntRemU:
		flags = FlagsMayTrap
	}
	result := t.ValueType()
	if op >= IntEq {
		result = wasm.I32
	}
	return newExpression(code.Numeric(op.opcode(t)), result, flags, a, b)
}

func IntUnary(t IntType, op IntUnaryOp, a *Expression) *Expression {
	result := t.ValueType()
	if op == IntEqz {
		result = wasm.I32
	}
	return newExpression(code.Numeric(op.opcode(t)), result, 0, a)
}

// Wrap truncates an i64 operand to i32.
func Wrap(a *Expression) *Expression {
	return newExpression(code.Numeric(code.OpI32WrapI64), wasm.I32, 0, a)
}

// Extend widens an i32 operand to i64.
func Extend(a *Expression, signed bool) *Expression {
	op := byte(code.OpI64ExtendI32U)
	if signed {
		op = code.OpI64ExtendI32S
	}
	return newExpression(code.Numeric(op), wasm.I64, 0, a)
}

// Call calls fn with the given arguments. The expression's type is fn's first result, or nil.
func Call(fn *FunctionRef, args ...*Expression) *Expression {
	var result wasm.ValueType
	if len(fn.Results) != 0 {
		result = fn.Results[0]
	}
	x := newExpression(code.Call(fn.Index), result, FlagsCall, args...)
	x.Function = fn
	return x
}

func I32Const(v int32) *Expression {
	return newExpression(code.I32Const(v), wasm.I32, 0)
}

func I64Const(v int64) *Expression {
	return newExpression(code.I64Const(v), wasm.I64, 0)
}

// LocalGet reads local index, which holds a value of type t.
func LocalGet(index uint32, t wasm.ValueType) *Expression {
	x := newExpression(code.LocalGet(index), t, FlagsLoadLocal)
	x.Locals.Set(uint(index))
	return x
}

func (x *Expression) Kind() Kind {
	switch {
	case x.Instr.Opcode == code.OpCall:
		return KindCall
	case x.Instr.Opcode == code.OpI32Const, x.Instr.Opcode == code.OpI64Const:
		return KindConst
	case x.Instr.Opcode == code.OpLocalGet:
		return KindLocal
	case x.Instr.Opcode == code.OpI32WrapI64, x.Instr.Opcode == code.OpI64ExtendI32S, x.Instr.Opcode == code.OpI64ExtendI32U:
		return KindConversion
	case x.Instr.IsBinary():
		return KindBinary
	default:
		return KindUnary
	}
}

// IsPure returns true if the expression's value depends only on its operands.
func (x *Expression) IsPure() bool {
	return x.Flags&FlagsImpure == 0
}

// Instructions returns the expression in stack order: operands first, left to right.
func (x *Expression) Instructions() []code.Instruction {
	var instrs []code.Instruction
	var walk func(x *Expression)
	walk = func(x *Expression) {
		for _, u := range x.Uses {
			walk(u)
		}
		instrs = append(instrs, x.Instr)
	}
	walk(x)
	return instrs
}
