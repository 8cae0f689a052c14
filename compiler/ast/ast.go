// Package ast describes the expressions handed to the lowering pass by the bytecode front end.
package ast

import (
	"fmt"
	"strings"
)

// Type is a front-end value type.
type Type byte

const (
	Void Type = iota
	Boolean
	Int
	Long
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Boolean:
		return "boolean"
	case Int:
		return "int"
	case Long:
		return "long"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

var descriptorCodes = map[Type]byte{Void: 'V', Boolean: 'Z', Int: 'I', Long: 'J'}

// Descriptor is a method's parameter and result types.
type Descriptor struct {
	Params []Type
	Result Type
}

// Signature returns a descriptor for the given result and parameter types.
func Signature(result Type, params ...Type) Descriptor {
	return Descriptor{Params: params, Result: result}
}

// String returns the descriptor in bytecode notation, e.g. "(II)I".
func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range d.Params {
		b.WriteByte(descriptorCodes[p])
	}
	b.WriteByte(')')
	b.WriteByte(descriptorCodes[d.Result])
	return b.String()
}

// InvalidDescriptorError is returned for descriptors that cannot be parsed.
type InvalidDescriptorError struct {
	Descriptor string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("ast: invalid descriptor %q", e.Descriptor)
}

// ParseDescriptor parses a descriptor in bytecode notation. Only the types known to this
// package are accepted.
func ParseDescriptor(s string) (Descriptor, error) {
	if len(s) < 3 || s[0] != '(' {
		return Descriptor{}, &InvalidDescriptorError{Descriptor: s}
	}
	end := strings.IndexByte(s, ')')
	if end < 0 || end != len(s)-2 {
		return Descriptor{}, &InvalidDescriptorError{Descriptor: s}
	}

	decode := func(c byte) (Type, bool) {
		for t, code := range descriptorCodes {
			if code == c {
				return t, true
			}
		}
		return 0, false
	}

	var d Descriptor
	for i := 1; i < end; i++ {
		t, ok := decode(s[i])
		if !ok || t == Void {
			return Descriptor{}, &InvalidDescriptorError{Descriptor: s}
		}
		d.Params = append(d.Params, t)
	}
	result, ok := decode(s[end+1])
	if !ok {
		return Descriptor{}, &InvalidDescriptorError{Descriptor: s}
	}
	d.Result = result
	return d, nil
}

// MethodReference identifies a method by its owning class, name and descriptor.
type MethodReference struct {
	ClassName  string
	Name       string
	Descriptor Descriptor
}

// Method returns a reference to the named method.
func Method(className, name string, result Type, params ...Type) MethodReference {
	return MethodReference{ClassName: className, Name: name, Descriptor: Signature(result, params...)}
}

func (m MethodReference) String() string {
	return m.ClassName + "." + m.Name + m.Descriptor.String()
}

// Expr is an expression produced by the front end. The set of implementations is closed:
// *Constant, *Variable and *Invocation.
type Expr interface {
	ResultType() Type
	isExpr()
}

// Constant is an integer literal.
type Constant struct {
	Kind  Type
	Value int64
}

// Variable reads a local variable slot.
type Variable struct {
	Kind  Type
	Index uint32
}

// Invocation is a static method call.
type Invocation struct {
	Method MethodReference
	Args   []Expr
}

func (*Constant) isExpr()   {}
func (*Variable) isExpr()   {}
func (*Invocation) isExpr() {}

func (c *Constant) ResultType() Type {
	return c.Kind
}

func (v *Variable) ResultType() Type {
	return v.Kind
}

func (i *Invocation) ResultType() Type {
	return i.Method.Descriptor.Result
}

// IntConst returns an int constant.
func IntConst(v int32) *Constant {
	return &Constant{Kind: Int, Value: int64(v)}
}

// LongConst returns a long constant.
func LongConst(v int64) *Constant {
	return &Constant{Kind: Long, Value: v}
}

// Invoke returns a call to method with the given arguments.
func Invoke(method MethodReference, args ...Expr) *Invocation {
	return &Invocation{Method: method, Args: args}
}
