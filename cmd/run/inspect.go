package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInspectCmd() *cobra.Command {
	var (
		globals     []string
		grow        uint32
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file.wasm>",
		Short: "Instantiate a module and report its memory and globals",
		Long: `The inspect command instantiates a core WebAssembly module, adopts its
linear memory into a store and imports the named globals.

Example:
  run inspect guest.wasm --global counter --global limit
  run inspect guest.wasm --grow 2 --json
  run inspect guest.wasm --global counter -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if interactive {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return fmt.Errorf("interactive mode requires a terminal")
				}
				return runInteractive(ctx, args[0], globals)
			}
			return runInspect(ctx, cmd.OutOrStdout(), args[0], globals, grow)
		},
	}

	cmd.Flags().StringArrayVarP(&globals, "global", "g", nil, "Exported global to import (repeatable)")
	cmd.Flags().Uint32Var(&grow, "grow", 0, "Grow the guest memory by this many pages first")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Interactive mode with TUI")
	return cmd
}

func runInspect(ctx context.Context, w io.Writer, path string, globals []string, grow uint32) error {
	s, err := openSession(ctx, path, globals)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if grow > 0 {
		if _, err := s.inst.GrowMemory(grow); err != nil {
			return err
		}
	}

	r := s.report()
	if jsonOut {
		return printJSON(w, r)
	}

	fmt.Fprintf(w, "Module: %s\n", r.File)
	if r.Memory != nil {
		fmt.Fprintf(w, "Memory: %d pages (%d bytes), min %d, max %d\n",
			r.Memory.Pages, r.Memory.Bytes, r.Memory.MinPages, r.Memory.MaxPages)
	} else {
		fmt.Fprintln(w, "Memory: none")
	}
	fmt.Fprintf(w, "Functions: %s\n", strings.Join(r.Functions, ", "))
	if len(r.Globals) > 0 {
		fmt.Fprintln(w, "Globals:")
		for _, g := range r.Globals {
			mut := "const"
			if g.Mutable {
				mut = "mut"
			}
			fmt.Fprintf(w, "  %s: %s %s = %s\n", g.Name, mut, g.Type, g.Value)
		}
	}
	return nil
}

func runInteractive(ctx context.Context, path string, globals []string) error {
	s, err := openSession(ctx, path, globals)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	m, err := newInspectorModel(s)
	if err != nil {
		return err
	}
	// Update and View run on this goroutine, which owns the store.
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
