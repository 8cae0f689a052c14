package lower

import (
	"fmt"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"github.com/wasmback/wasmback/compiler/ast"
	"github.com/wasmback/wasmback/compiler/wax"
	"github.com/wasmback/wasmback/wasm"
)

// VoidParameterError is returned for descriptors that take a void parameter.
type VoidParameterError struct {
	Method ast.MethodReference
}

func (e *VoidParameterError) Error() string {
	return fmt.Sprintf("lower: %v has a void parameter", e.Method)
}

// ValueType returns the WebAssembly type used for values of type t, or nil for void.
func ValueType(t ast.Type) wasm.ValueType {
	switch t {
	case ast.Boolean, ast.Int:
		return wasm.I32
	case ast.Long:
		return wasm.I64
	default:
		return nil
	}
}

// FunctionTable assigns function indices to static methods in order of first use, starting at
// Base. The module assembler binds the indices to imports or definitions.
type FunctionTable struct {
	Base uint32

	indices map[string]*wax.FunctionRef
	order   []ast.MethodReference
}

func NewFunctionTable(base uint32) *FunctionTable {
	return &FunctionTable{Base: base, indices: map[string]*wax.FunctionRef{}}
}

// ForStaticMethod returns the function for method, allocating it on first use.
func (t *FunctionTable) ForStaticMethod(method ast.MethodReference) (*wax.FunctionRef, error) {
	key := method.String()
	if fn, ok := t.indices[key]; ok {
		return fn, nil
	}

	n, err := safecast.Conv[uint32](len(t.order))
	if err != nil {
		return nil, fmt.Errorf("lower: function table is full: %w", err)
	}
	fn := &wax.FunctionRef{Index: t.Base + n, Name: method.ClassName + "." + method.Name}
	for _, p := range method.Descriptor.Params {
		vt := ValueType(p)
		if vt == nil {
			return nil, &VoidParameterError{Method: method}
		}
		fn.Params = append(fn.Params, vt)
	}
	if vt := ValueType(method.Descriptor.Result); vt != nil {
		fn.Results = []wasm.ValueType{vt}
	}

	if t.indices == nil {
		t.indices = map[string]*wax.FunctionRef{}
	}
	t.indices[key] = fn
	t.order = append(t.order, method)
	Logger().Debug("allocated function", zap.Stringer("method", method), zap.Uint32("index", fn.Index))
	return fn, nil
}

// Methods returns the methods in index order.
func (t *FunctionTable) Methods() []ast.MethodReference {
	return t.order
}

// Len returns the number of allocated functions.
func (t *FunctionTable) Len() int {
	return len(t.order)
}
