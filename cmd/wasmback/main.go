package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wasmback/wasmback/cmd/wasmback/dump"
	"github.com/wasmback/wasmback/cmd/wasmback/lower"
	compilerlower "github.com/wasmback/wasmback/compiler/lower"
	"github.com/wasmback/wasmback/config"
	"github.com/wasmback/wasmback/wasm"
)

var version = "<unknown>"

func configureCLI() *cobra.Command {
	var cpuProfile string
	var memProfile string
	var configPath string
	var verbose bool

	cfg := config.Default()
	getConfig := func() config.Config { return cfg }

	rootCommand := &cobra.Command{
		Use:           "wasmback",
		Short:         "wasmback WebAssembly backend tools",
		Long:          "wasmback - disassembly and intrinsic lowering tools for a WebAssembly backend",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg, err = config.LoadOrDefault(".")
			}
			if err != nil {
				return err
			}

			if verbose || cfg.Log.Verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				wasm.SetLogger(logger.Named("wasm"))
				compilerlower.SetLogger(logger.Named("lower"))
			}

			if cpuProfile != "" {
				f, err := os.Create(cpuProfile)
				if err != nil {
					return err
				}
				pprof.StartCPUProfile(f)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cpuProfile != "" {
				pprof.StopCPUProfile()
			}

			if memProfile != "" {
				f, err := os.Create(memProfile)
				if err != nil {
					return err
				}
				runtime.GC()
				pprof.WriteHeapProfile(f)
			}

			return nil
		},
	}

	rootCommand.AddCommand(dump.Command(getConfig))
	rootCommand.AddCommand(lower.Command())

	rootCommand.PersistentFlags().StringVar(&configPath, "config", "", "read configuration from this path instead of the nearest "+config.FileName)
	rootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCommand.PersistentFlags().StringVar(&cpuProfile, "cpu", "", "emit Go CPU profile data to this path")
	rootCommand.PersistentFlags().StringVar(&memProfile, "mem", "", "emit Go memory profile data to this path")

	rootCommand.PersistentFlags().MarkHidden("cpu")
	rootCommand.PersistentFlags().MarkHidden("mem")

	return rootCommand
}

func main() {
	rootCommand := configureCLI()

	if err := rootCommand.Execute(); err != nil {
		color.NoColor = !term.IsTerminal(int(os.Stderr.Fd()))
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}
