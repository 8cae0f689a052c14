package dump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wasmback/wasmback/config"
	"github.com/wasmback/wasmback/disasm"
	"github.com/wasmback/wasmback/load"
	"github.com/wasmback/wasmback/names"
	"github.com/wasmback/wasmback/wasm"
	"github.com/wasmback/wasmback/wasm/validate"
)

type options struct {
	names         []string
	saveNames     string
	symbols       bool
	validate      bool
	addresses     bool
	addressOffset int
	jobs          int
}

func Command(getConfig func() config.Config) *cobra.Command {
	var opts options

	command := &cobra.Command{
		Use:   "dump [path to module]...",
		Short: "Dump WebAssembly modules",
		Long:  "Dump the declarations of WebAssembly modules as WebAssembly text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("expected at least one module")
			}
			if opts.saveNames != "" && len(args) != 1 {
				return errors.New("--save-names requires exactly one module")
			}

			cfg := getConfig().Dump
			flags := cmd.Flags()
			if !flags.Changed("addresses") {
				opts.addresses = cfg.Addresses
			}
			if !flags.Changed("address-offset") {
				opts.addressOffset = cfg.AddressOffset
			}
			if !flags.Changed("jobs") {
				opts.jobs = cfg.Jobs
			}
			opts.names = append(append([]string(nil), cfg.Names...), opts.names...)

			return run(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	command.Flags().StringArrayVarP(&opts.names, "names", "n", nil, "read additional names from a .toml symbol file or .msgpack snapshot")
	command.Flags().StringVar(&opts.saveNames, "save-names", "", "save the module's names as a msgpack snapshot")
	command.Flags().BoolVarP(&opts.symbols, "symbols", "s", false, "dump named symbols in CSV format")
	command.Flags().BoolVar(&opts.validate, "validate", false, "check the module's index references before dumping it")
	command.Flags().BoolVarP(&opts.addresses, "addresses", "a", false, "prefix each element with its address")
	command.Flags().IntVar(&opts.addressOffset, "address-offset", 0, "bias added to each address")
	command.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, "number of modules to process concurrently")

	return command
}

func run(ctx context.Context, w io.Writer, paths []string, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var extra names.Chain
	for _, path := range opts.names {
		t, err := names.LoadFile(path)
		if err != nil {
			return err
		}
		extra = append(extra, t)
	}

	outputs := make([]bytes.Buffer, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.jobs))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return dumpFile(&outputs[i], path, extra, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.symbols {
		if err := writeSymbolHeader(w); err != nil {
			return err
		}
	}
	for i := range outputs {
		if len(paths) > 1 && !opts.symbols {
			fmt.Fprintf(w, ";; %s\n", paths[i])
		}
		if _, err := outputs[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// dumpFile writes one module.
func dumpFile(w io.Writer, path string, extra names.Chain, opts options) error {
	m, err := load.LoadFile(path)
	if err != nil {
		return err
	}

	if opts.validate {
		if err := validate.ValidateModule(m); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	own, err := names.FromModule(m)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if opts.saveNames != "" {
		if err := own.Save(opts.saveNames); err != nil {
			return err
		}
	}

	chain := append(append(names.Chain(nil), extra...), own)
	if opts.symbols {
		return writeSymbols(w, path, m, chain)
	}

	err = disasm.WriteModule(w, m, disasm.ModuleOptions{
		Names:         chain,
		AddressOffset: opts.addressOffset,
		Addresses:     opts.addresses,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// moduleFunctionParams returns the parameter count of each function in the function index space.
func moduleFunctionParams(m *wasm.Module) []int {
	params := make([]int, m.FunctionCount())
	for i := range params {
		typ, ok := m.FunctionType(uint32(i))
		if !ok {
			continue
		}
		if t, ok := m.Type(typ); ok && t.Composite.Kind == wasm.CompositeFunc {
			params[i] = len(t.Composite.Params)
		}
	}
	return params
}
