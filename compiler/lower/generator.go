// Package lower translates front-end expressions into wax expression trees.
package lower

import (
	"fmt"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"github.com/wasmback/wasmback/compiler/ast"
	"github.com/wasmback/wasmback/compiler/intrinsics"
	"github.com/wasmback/wasmback/compiler/wax"
)

// UnsupportedExpressionError is returned for expressions the generator cannot lower.
type UnsupportedExpressionError struct {
	Expr ast.Expr
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("lower: unsupported expression %T", e.Expr)
}

// ConstantRangeError is returned for int constants that do not fit in 32 bits.
type ConstantRangeError struct {
	Value int64
	Err   error
}

func (e *ConstantRangeError) Error() string {
	return fmt.Sprintf("lower: int constant %d out of range: %v", e.Value, e.Err)
}

func (e *ConstantRangeError) Unwrap() error {
	return e.Err
}

// Generator lowers expressions. Calls to registered intrinsics are replaced by their
// instruction sequences; all other calls go through the function table.
type Generator struct {
	intrinsics intrinsics.Registry
	functions  *FunctionTable
}

var _ intrinsics.Manager = (*Generator)(nil)

func NewGenerator(registry intrinsics.Registry, functions *FunctionTable) *Generator {
	if functions == nil {
		functions = NewFunctionTable(0)
	}
	return &Generator{intrinsics: registry, functions: functions}
}

// Functions returns the generator's function table.
func (g *Generator) Functions() *FunctionTable {
	return g.functions
}

func (g *Generator) FunctionFor(method ast.MethodReference) (*wax.FunctionRef, error) {
	return g.functions.ForStaticMethod(method)
}

func (g *Generator) Generate(x ast.Expr) (*wax.Expression, error) {
	switch x := x.(type) {
	case *ast.Constant:
		return g.constant(x)
	case *ast.Variable:
		t := ValueType(x.Kind)
		if t == nil {
			return nil, &UnsupportedExpressionError{Expr: x}
		}
		return wax.LocalGet(x.Index, t), nil
	case *ast.Invocation:
		return g.invocation(x)
	default:
		return nil, &UnsupportedExpressionError{Expr: x}
	}
}

func (g *Generator) constant(c *ast.Constant) (*wax.Expression, error) {
	switch c.Kind {
	case ast.Long:
		return wax.I64Const(c.Value), nil
	case ast.Int, ast.Boolean:
		v, err := safecast.Conv[int32](c.Value)
		if err != nil {
			return nil, &ConstantRangeError{Value: c.Value, Err: err}
		}
		return wax.I32Const(v), nil
	default:
		return nil, &UnsupportedExpressionError{Expr: c}
	}
}

func (g *Generator) invocation(call *ast.Invocation) (*wax.Expression, error) {
	if in, ok := g.intrinsics.Find(call.Method); ok {
		Logger().Debug("lowering intrinsic", zap.Stringer("method", call.Method))
		return in.Apply(call, g)
	}

	if want := len(call.Method.Descriptor.Params); len(call.Args) != want {
		return nil, fmt.Errorf("lower: %v takes %d arguments, got %d", call.Method, want, len(call.Args))
	}
	fn, err := g.FunctionFor(call.Method)
	if err != nil {
		return nil, err
	}
	args := make([]*wax.Expression, len(call.Args))
	for i, a := range call.Args {
		if args[i], err = g.Generate(a); err != nil {
			return nil, fmt.Errorf("argument %d of %v: %w", i, call.Method, err)
		}
	}
	return wax.Call(fn, args...), nil
}
