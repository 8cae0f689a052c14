package wax

import (
	"fmt"
	"io"
	"strings"

	"github.com/wasmback/wasmback/disasm"
	"github.com/wasmback/wasmback/wasm/code"
)

// Format writes the expression in folded form, e.g. (i32.div_u (i32.const 7) (i32.const 3)).
// The '+' flag (%+v) breaks operands onto indented lines.
func (x *Expression) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		formatExpression(f, x, f.Flag('+'), 0)
	default:
		fmt.Fprintf(f, "%%!%c(*wax.Expression)", verb)
	}
}

func (x *Expression) String() string {
	var b strings.Builder
	formatExpression(&b, x, false, 0)
	return b.String()
}

func formatExpression(w io.Writer, x *Expression, multiline bool, depth int) {
	io.WriteString(w, "(")
	if x.Instr.Opcode == code.OpCall && x.Function != nil {
		io.WriteString(w, "call ")
		io.WriteString(w, disasm.Reference(x.Function.Index, x.Function.Name, x.Function.Name != ""))
	} else {
		io.WriteString(w, x.Instr.String())
	}
	for _, u := range x.Uses {
		if multiline {
			io.WriteString(w, "\n"+strings.Repeat("  ", depth+1))
		} else {
			io.WriteString(w, " ")
		}
		formatExpression(w, u, multiline, depth+1)
	}
	io.WriteString(w, ")")
}
