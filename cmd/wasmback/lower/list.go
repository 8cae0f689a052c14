package lower

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/wasmback/wasmback/compiler/ast"
	"github.com/wasmback/wasmback/compiler/intrinsics"
	compilerlower "github.com/wasmback/wasmback/compiler/lower"
)

type intrinsicRow struct {
	Class    string `csv:"class"`
	Method   string `csv:"method"`
	Arity    int    `csv:"arity"`
	Lowering string `csv:"lowering"`
}

// writeIntrinsics writes one CSV row per intrinsic method, lowered over locals 0..arity-1.
func writeIntrinsics(w io.Writer, registry intrinsics.Registry) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	encoder := csvutil.NewEncoder(csvWriter)

	g := compilerlower.NewGenerator(registry, nil)
	for _, in := range registry {
		table, ok := in.(*intrinsics.Table)
		if !ok {
			continue
		}
		kind := ast.Int
		if table.Owner == intrinsics.LongClass {
			kind = ast.Long
		}

		for _, name := range table.Names() {
			arity := table.Methods[name].Arity
			args := make([]ast.Expr, arity)
			params := make([]ast.Type, arity)
			for i := range args {
				args[i] = &ast.Variable{Kind: kind, Index: uint32(i)}
				params[i] = kind
			}

			x, err := table.Apply(ast.Invoke(ast.Method(table.Owner, name, kind, params...), args...), g)
			if err != nil {
				return err
			}
			err = encoder.Encode(intrinsicRow{
				Class:    table.Owner,
				Method:   name,
				Arity:    arity,
				Lowering: x.String(),
			})
			if err != nil {
				return err
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
