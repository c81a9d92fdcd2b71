package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-store/engine"
	"github.com/wippyai/wasm-store/memory"
	"github.com/wippyai/wasm-store/store"
)

var (
	// Global flags
	verbose bool
	jsonOut bool
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect WebAssembly modules backed by mmap'd linear memory",
		Long: `run instantiates WebAssembly modules on wazero with their linear memory
held in anonymous mappings, publishes that memory and the module's globals into a
store, and reports what it finds.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			memory.SetLogger(l.Named("memory"))
			store.SetLogger(l.Named("store"))
			engine.SetLogger(l.Named("engine"))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newByteBufCmd())
	return cmd
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printJSON outputs data as JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
