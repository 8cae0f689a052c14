package wax

import (
	"errors"
	"math/bits"

	"github.com/wasmback/wasmback/exec"
	"github.com/wasmback/wasmback/wasm"
	"github.com/wasmback/wasmback/wasm/code"
)

// ErrNotConstant is returned when evaluating an expression that reads locals, globals or
// calls functions.
var ErrNotConstant = errors.New("wax: expression is not constant")

type values []uint64

func (vs values) U32(i int) uint32 {
	return uint32(vs[i])
}

func (vs values) U64(i int) uint64 {
	return vs[i]
}

func (vs values) I32(i int) int32 {
	return int32(vs[i])
}

func (vs values) I64(i int) int64 {
	return int64(vs[i])
}

func i32Bool(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// Evaluate computes the value of a pure expression. i32 results are returned sign-extended.
// Division by zero and signed overflow are reported as exec.Traps.
func Evaluate(x *Expression) (result uint64, err error) {
	if !x.IsPure() {
		return 0, ErrNotConstant
	}

	defer func() { err = exec.RecoverTrap(recover(), err) }()
	return evaluate(x), nil
}

// Fold evaluates a pure expression and returns it as a constant of the same type.
func Fold(x *Expression) (*Expression, error) {
	v, err := Evaluate(x)
	if err != nil {
		return nil, err
	}
	if x.Type == wasm.ValueType(wasm.I64) {
		return I64Const(int64(v)), nil
	}
	return I32Const(int32(v)), nil
}

func evaluate(x *Expression) uint64 {
	args := make(values, len(x.Uses))
	for i, u := range x.Uses {
		args[i] = evaluate(u)
	}

	instr := x.Instr
	switch instr.Opcode {
	case code.OpI32Const:
		return uint64(instr.I32())
	case code.OpI64Const:
		return uint64(instr.I64())

	case code.OpI32Eqz:
		return uint64(i32Bool(args.I32(0) == 0))
	case code.OpI32Eq:
		return uint64(i32Bool(args.I32(0) == args.I32(1)))
	case code.OpI32Ne:
		return uint64(i32Bool(args.I32(0) != args.I32(1)))
	case code.OpI32LtS:
		return uint64(i32Bool(args.I32(0) < args.I32(1)))
	case code.OpI32LtU:
		return uint64(i32Bool(args.U32(0) < args.U32(1)))
	case code.OpI32GtS:
		return uint64(i32Bool(args.I32(0) > args.I32(1)))
	case code.OpI32GtU:
		return uint64(i32Bool(args.U32(0) > args.U32(1)))
	case code.OpI32LeS:
		return uint64(i32Bool(args.I32(0) <= args.I32(1)))
	case code.OpI32LeU:
		return uint64(i32Bool(args.U32(0) <= args.U32(1)))
	case code.OpI32GeS:
		return uint64(i32Bool(args.I32(0) >= args.I32(1)))
	case code.OpI32GeU:
		return uint64(i32Bool(args.U32(0) >= args.U32(1)))

	case code.OpI64Eqz:
		return uint64(i32Bool(args.I64(0) == 0))
	case code.OpI64Eq:
		return uint64(i32Bool(args.I64(0) == args.I64(1)))
	case code.OpI64Ne:
		return uint64(i32Bool(args.I64(0) != args.I64(1)))
	case code.OpI64LtS:
		return uint64(i32Bool(args.I64(0) < args.I64(1)))
	case code.OpI64LtU:
		return uint64(i32Bool(args.U64(0) < args.U64(1)))
	case code.OpI64GtS:
		return uint64(i32Bool(args.I64(0) > args.I64(1)))
	case code.OpI64GtU:
		return uint64(i32Bool(args.U64(0) > args.U64(1)))
	case code.OpI64LeS:
		return uint64(i32Bool(args.I64(0) <= args.I64(1)))
	case code.OpI64LeU:
		return uint64(i32Bool(args.U64(0) <= args.U64(1)))
	case code.OpI64GeS:
		return uint64(i32Bool(args.I64(0) >= args.I64(1)))
	case code.OpI64GeU:
		return uint64(i32Bool(args.U64(0) >= args.U64(1)))

	case code.OpI32Clz:
		return uint64(int32(bits.LeadingZeros32(args.U32(0))))
	case code.OpI32Ctz:
		return uint64(int32(bits.TrailingZeros32(args.U32(0))))
	case code.OpI32Popcnt:
		return uint64(int32(bits.OnesCount32(args.U32(0))))
	case code.OpI32Add:
		return uint64(args.I32(0) + args.I32(1))
	case code.OpI32Sub:
		return uint64(args.I32(0) - args.I32(1))
	case code.OpI32Mul:
		return uint64(args.I32(0) * args.I32(1))
	case code.OpI32DivS:
		return uint64(exec.I32DivS(args.I32(0), args.I32(1)))
	case code.OpI32DivU:
		return uint64(int32(args.U32(0) / args.U32(1)))
	case code.OpI32RemS:
		return uint64(exec.I32RemS(args.I32(0), args.I32(1)))
	case code.OpI32RemU:
		return uint64(int32(args.U32(0) % args.U32(1)))
	case code.OpI32And:
		return uint64(args.I32(0) & args.I32(1))
	case code.OpI32Or:
		return uint64(args.I32(0) | args.I32(1))
	case code.OpI32Xor:
		return uint64(args.I32(0) ^ args.I32(1))
	case code.OpI32Shl:
		return uint64(args.I32(0) << (args.U32(1) & 31))
	case code.OpI32ShrS:
		return uint64(args.I32(0) >> (args.U32(1) & 31))
	case code.OpI32ShrU:
		return uint64(int32(args.U32(0) >> (args.U32(1) & 31)))
	case code.OpI32Rotl:
		return uint64(int32(bits.RotateLeft32(args.U32(0), int(args.U32(1)&31))))
	case code.OpI32Rotr:
		return uint64(int32(bits.RotateLeft32(args.U32(0), -int(args.U32(1)&31))))

	case code.OpI64Clz:
		return uint64(bits.LeadingZeros64(args.U64(0)))
	case code.OpI64Ctz:
		return uint64(bits.TrailingZeros64(args.U64(0)))
	case code.OpI64Popcnt:
		return uint64(bits.OnesCount64(args.U64(0)))
	case code.OpI64Add:
		return uint64(args.I64(0) + args.I64(1))
	case code.OpI64Sub:
		return uint64(args.I64(0) - args.I64(1))
	case code.OpI64Mul:
		return uint64(args.I64(0) * args.I64(1))
	case code.OpI64DivS:
		return uint64(exec.I64DivS(args.I64(0), args.I64(1)))
	case code.OpI64DivU:
		return args.U64(0) / args.U64(1)
	case code.OpI64RemS:
		return uint64(exec.I64RemS(args.I64(0), args.I64(1)))
	case code.OpI64RemU:
		return args.U64(0) % args.U64(1)
	case code.OpI64And:
		return args.U64(0) & args.U64(1)
	case code.OpI64Or:
		return args.U64(0) | args.U64(1)
	case code.OpI64Xor:
		return args.U64(0) ^ args.U64(1)
	case code.OpI64Shl:
		return args.U64(0) << (args.U64(1) & 63)
	case code.OpI64ShrS:
		return uint64(args.I64(0) >> (args.U64(1) & 63))
	case code.OpI64ShrU:
		return args.U64(0) >> (args.U64(1) & 63)
	case code.OpI64Rotl:
		return bits.RotateLeft64(args.U64(0), int(args.U64(1)&63))
	case code.OpI64Rotr:
		return bits.RotateLeft64(args.U64(0), -int(args.U64(1)&63))

	case code.OpI32WrapI64:
		return uint64(int32(args.U64(0)))
	case code.OpI64ExtendI32S:
		return uint64(int64(args.I32(0)))
	case code.OpI64ExtendI32U:
		return uint64(args.U32(0))
	}

	panic(exec.TrapUnreachable)
}
