package lower

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wasmback/wasmback/compiler/intrinsics"
	compilerlower "github.com/wasmback/wasmback/compiler/lower"
	"github.com/wasmback/wasmback/compiler/wax"
	"github.com/wasmback/wasmback/wasm"
	"github.com/wasmback/wasmback/wasm/code"
)

type options struct {
	class      string
	method     string
	descriptor string
	args       []string
	hex        bool
	fold       bool
	list       bool
}

func Command() *cobra.Command {
	var opts options

	command := &cobra.Command{
		Use:   "lower",
		Short: "Lower a method call",
		Long:  "Lower a static method call to WebAssembly, replacing intrinsic methods with instructions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.New("unexpected arguments")
			}
			if opts.list {
				return writeIntrinsics(cmd.OutOrStdout(), intrinsics.Default())
			}
			if opts.method == "" {
				return errors.New("--method is required")
			}
			return run(cmd.OutOrStdout(), opts)
		},
	}

	command.Flags().StringVarP(&opts.class, "class", "c", intrinsics.IntegerClass, "the class that owns the method")
	command.Flags().StringVarP(&opts.method, "method", "m", "", "the method to call")
	command.Flags().StringVarP(&opts.descriptor, "descriptor", "d", "", "the method descriptor, e.g. (II)I; inferred from the arguments by default")
	command.Flags().StringArrayVar(&opts.args, "arg", nil, "an argument: a constant (7, -1, 7L) or a local (x0, x1L)")
	command.Flags().BoolVar(&opts.hex, "hex", false, "print the encoded instructions in hex")
	command.Flags().BoolVar(&opts.fold, "fold", false, "print the value of a constant call")
	command.Flags().BoolVar(&opts.list, "list", false, "list the intrinsic methods in CSV format")

	return command
}

func run(w io.Writer, opts options) error {
	call, err := invocation(opts.class, opts.method, opts.descriptor, opts.args)
	if err != nil {
		return err
	}

	g := compilerlower.NewGenerator(intrinsics.Default(), nil)
	x, err := g.Generate(call)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, x)

	if opts.hex {
		var buf bytes.Buffer
		if err := code.Encode(&buf, append(x.Instructions(), code.End())); err != nil {
			return err
		}
		fmt.Fprintln(w, hex.EncodeToString(buf.Bytes()))
	}

	if opts.fold {
		v, err := wax.Evaluate(x)
		if err != nil {
			return err
		}
		if x.Type == wasm.ValueType(wasm.I64) {
			fmt.Fprintln(w, int64(v))
		} else {
			fmt.Fprintln(w, int32(v))
		}
	}
	return nil
}
