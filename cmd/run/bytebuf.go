package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-store/memory"
)

type byteBufReport struct {
	Before    memory.Stats `json:"before"`
	After     memory.Stats `json:"after"`
	Size      int          `json:"size"`
	Resize    int          `json:"resize"`
	Preserved int          `json:"preserved"`
	ZeroTail  bool         `json:"zero_tail"`
	Intact    bool         `json:"intact"`
}

func newByteBufCmd() *cobra.Command {
	var size, resize int

	cmd := &cobra.Command{
		Use:   "bytebuf",
		Short: "Allocate, fill and resize an mmap'd byte buffer",
		Long: `The bytebuf command maps a buffer of --size bytes, fills it with 0xAB,
resizes it to --resize bytes and checks that the common prefix survived and any
growth reads as zero.

Example:
  run bytebuf --size 8192 --resize 4096
  run bytebuf --size 4096 --resize 65536 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runByteBuf(cmd.OutOrStdout(), size, resize)
		},
	}

	cmd.Flags().IntVar(&size, "size", 8192, "Initial length in bytes")
	cmd.Flags().IntVar(&resize, "resize", 4096, "Length to resize to")
	return cmd
}

func runByteBuf(w io.Writer, size, resize int) error {
	r := byteBufReport{Size: size, Resize: resize, Before: memory.ReadStats()}

	buf, err := memory.New(size)
	if err != nil {
		return err
	}
	defer buf.Close()

	fill := bytes.Repeat([]byte{0xAB}, size)
	copy(buf.Bytes(), fill)

	if err := buf.Realloc(resize); err != nil {
		return err
	}

	r.Preserved = min(size, resize)
	data := buf.Bytes()
	r.Intact = bytes.Equal(data[:r.Preserved], fill[:r.Preserved])
	r.ZeroTail = len(bytes.Trim(data[r.Preserved:], "\x00")) == 0
	r.After = memory.ReadStats()

	if jsonOut {
		return printJSON(w, r)
	}

	fmt.Fprintf(w, "Buffer: %d -> %d bytes\n", size, buf.Len())
	fmt.Fprintf(w, "Prefix: %d bytes preserved (intact: %t)\n", r.Preserved, r.Intact)
	fmt.Fprintf(w, "Tail zeroed: %t\n", r.ZeroTail)
	fmt.Fprintf(w, "Mappings: %d live, %d bytes mapped, %d maps, %d unmaps\n",
		r.After.LiveMappings, r.After.MappedBytes, r.After.Maps, r.After.Unmaps)
	return nil
}
