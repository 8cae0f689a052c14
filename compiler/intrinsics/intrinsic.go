// Package intrinsics lowers calls to selected library methods directly to WebAssembly
// instructions instead of to function calls.
package intrinsics

import (
	"fmt"
	"sort"

	"github.com/wasmback/wasmback/compiler/ast"
	"github.com/wasmback/wasmback/compiler/wax"
)

// Manager is the lowering pass as seen by an intrinsic.
type Manager interface {
	// Generate lowers an argument expression. It may be called recursively.
	Generate(x ast.Expr) (*wax.Expression, error)

	// FunctionFor resolves a static method to a callable function.
	FunctionFor(method ast.MethodReference) (*wax.FunctionRef, error)
}

// Intrinsic replaces calls to the methods it applies to. IsApplicable must only consider the
// method's static signature.
type Intrinsic interface {
	IsApplicable(method ast.MethodReference) bool
	Apply(call *ast.Invocation, m Manager) (*wax.Expression, error)
}

// ArityError is returned when a call passes the wrong number of arguments to an intrinsic.
type ArityError struct {
	Method ast.MethodReference
	Want   int
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("intrinsics: %v takes %d arguments, got %d", e.Method, e.Want, e.Got)
}

// NotApplicableError is returned when Apply is called with a method the intrinsic does not
// apply to.
type NotApplicableError struct {
	Method ast.MethodReference
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("intrinsics: %v is not an intrinsic", e.Method)
}

// Lowering describes how one method is lowered. Exactly one of Op and Call is set.
type Lowering struct {
	Arity int

	// Op combines the lowered arguments.
	Op func(args []*wax.Expression) *wax.Expression

	// Call names a runtime method that is called with the lowered arguments.
	Call *ast.MethodReference
}

// Table is the set of intrinsic methods of a single class. A method is applicable exactly
// when it has an entry in Methods.
type Table struct {
	Owner   string
	Methods map[string]Lowering
}

var _ Intrinsic = (*Table)(nil)

func (t *Table) lookup(method ast.MethodReference) (Lowering, bool) {
	if method.ClassName != t.Owner {
		return Lowering{}, false
	}
	l, ok := t.Methods[method.Name]
	return l, ok
}

func (t *Table) IsApplicable(method ast.MethodReference) bool {
	_, ok := t.lookup(method)
	return ok
}

// Apply lowers call. The runtime function, if any, is resolved first; the arguments are then
// lowered left to right, each exactly once.
func (t *Table) Apply(call *ast.Invocation, m Manager) (*wax.Expression, error) {
	l, ok := t.lookup(call.Method)
	if !ok {
		return nil, &NotApplicableError{Method: call.Method}
	}
	if len(call.Args) != l.Arity {
		return nil, &ArityError{Method: call.Method, Want: l.Arity, Got: len(call.Args)}
	}

	var fn *wax.FunctionRef
	if l.Call != nil {
		var err error
		if fn, err = m.FunctionFor(*l.Call); err != nil {
			return nil, fmt.Errorf("resolving %v: %w", *l.Call, err)
		}
	}

	args := make([]*wax.Expression, len(call.Args))
	for i, a := range call.Args {
		x, err := m.Generate(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %v: %w", i, call.Method, err)
		}
		args[i] = x
	}

	if fn != nil {
		return wax.Call(fn, args...), nil
	}
	return l.Op(args), nil
}

// Names returns the names of the table's methods in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Methods))
	for name := range t.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry is an ordered list of intrinsics. The first applicable intrinsic wins.
type Registry []Intrinsic

// Default returns the intrinsics for java.lang.Integer and java.lang.Long.
func Default() Registry {
	return Registry{Integer(), Long()}
}

func (r Registry) Find(method ast.MethodReference) (Intrinsic, bool) {
	for _, in := range r {
		if in.IsApplicable(method) {
			return in, true
		}
	}
	return nil, false
}
