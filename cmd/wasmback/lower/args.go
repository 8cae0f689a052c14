package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wasmback/wasmback/compiler/ast"
)

// parseArg parses a command-line argument expression: an integer constant ("7", "-1", "0x10")
// or a local ("x0"). A trailing "L" makes the value a long.
func parseArg(s string) (ast.Expr, error) {
	kind := ast.Int
	text := s
	if strings.HasSuffix(text, "L") {
		kind, text = ast.Long, strings.TrimSuffix(text, "L")
	}

	if strings.HasPrefix(text, "x") {
		index, err := strconv.ParseUint(text[1:], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid local %q: %w", s, err)
		}
		return &ast.Variable{Kind: kind, Index: uint32(index)}, nil
	}

	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid constant %q: %w", s, err)
	}
	return &ast.Constant{Kind: kind, Value: v}, nil
}

// invocation builds a call to class.method. Without an explicit descriptor the parameter types
// follow the arguments and the result is int.
func invocation(class, method, descriptor string, args []string) (*ast.Invocation, error) {
	exprs := make([]ast.Expr, len(args))
	params := make([]ast.Type, len(args))
	for i, a := range args {
		x, err := parseArg(a)
		if err != nil {
			return nil, err
		}
		exprs[i], params[i] = x, x.ResultType()
	}

	d := ast.Signature(ast.Int, params...)
	if descriptor != "" {
		var err error
		if d, err = ast.ParseDescriptor(descriptor); err != nil {
			return nil, err
		}
	}
	return ast.Invoke(ast.MethodReference{ClassName: class, Name: method, Descriptor: d}, exprs...), nil
}
