package intrinsics

import (
	"github.com/wasmback/wasmback/compiler/ast"
	"github.com/wasmback/wasmback/compiler/wax"
)

const (
	IntegerClass = "java.lang.Integer"
	LongClass    = "java.lang.Long"

	// RuntimeClass holds the runtime support methods called by lowered intrinsics.
	RuntimeClass = "org.teavm.backend.wasm.WasmRuntime"
)

var (
	RuntimeCompareUnsigned     = ast.Method(RuntimeClass, "compareUnsigned", ast.Int, ast.Int, ast.Int)
	RuntimeCompareUnsignedLong = ast.Method(RuntimeClass, "compareUnsigned", ast.Int, ast.Long, ast.Long)
)

// Integer returns the intrinsics of java.lang.Integer.
func Integer() *Table {
	return integerTable(IntegerClass, wax.I32, RuntimeCompareUnsigned)
}

// Long returns the intrinsics of java.lang.Long. The bit-counting methods return int, so their
// i64 results are wrapped.
func Long() *Table {
	return integerTable(LongClass, wax.I64, RuntimeCompareUnsignedLong)
}

func integerTable(owner string, t wax.IntType, compare ast.MethodReference) *Table {
	binary := func(op wax.IntBinaryOp) Lowering {
		return Lowering{Arity: 2, Op: func(args []*wax.Expression) *wax.Expression {
			return wax.IntBinary(t, op, args[0], args[1])
		}}
	}
	count := func(op wax.IntUnaryOp) Lowering {
		return Lowering{Arity: 1, Op: func(args []*wax.Expression) *wax.Expression {
			x := wax.IntUnary(t, op, args[0])
			if t == wax.I64 {
				x = wax.Wrap(x)
			}
			return x
		}}
	}

	return &Table{
		Owner: owner,
		Methods: map[string]Lowering{
			"divideUnsigned":        binary(wax.IntDivU),
			"remainderUnsigned":     binary(wax.IntRemU),
			"compareUnsigned":       {Arity: 2, Call: &compare},
			"numberOfLeadingZeros":  count(wax.IntClz),
			"numberOfTrailingZeros": count(wax.IntCtz),
			"bitCount":              count(wax.IntPopcnt),
		},
	}
}
