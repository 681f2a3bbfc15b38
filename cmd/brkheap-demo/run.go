package main

import (
	"fmt"
	"io"
	"os"

	brk "brk_heap"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Replay the malloc/free smoke sequence",
		Long: `run allocates 400 and 4 bytes, frees both, allocates 4 bytes again and
checks that the first free block in creation order was reused. It then
stores a fixed-size record and prints the heap statistics.

Example:
  brkheap-demo run
  brkheap-demo run --backing file --path /tmp/heap.data --checked -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHeap()
			if err != nil {
				return err
			}
			defer h.Close()
			if err := replay(os.Stdout, h); err != nil {
				return err
			}
			return printStats(h)
		},
	})
}

type player struct {
	ID   uint64
	HP   uint32
	MP   uint32
	Name [32]byte
}

// replay 执行冒烟序列，过程写到 w
func replay(w io.Writer, h *brk.Heap) error {
	a, err := h.Malloc(100 * 4)
	if err != nil {
		return err
	}
	b, err := h.Malloc(4)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "malloc(400) = %#x\nmalloc(4)   = %#x\n", uint64(a), uint64(b))
	h.Free(a)
	h.Free(b)

	c, err := h.Malloc(4)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "malloc(4)   = %#x (reused first block: %v, capacity %s)\n",
		uint64(c), c == a, humanize.IBytes(h.UsableSize(c)))

	v := &player{ID: 1, HP: 100, MP: 50}
	copy(v.Name[:], "player1")
	p, err := brk.NewFixed(h, v)
	if err != nil {
		return err
	}
	got, err := brk.LoadFixed[player](h, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "fixed record at %#x: id=%d hp=%d name=%s\n", uint64(p), got.ID, got.HP, string(got.Name[:7]))
	return h.Validate()
}

func printStats(h *brk.Heap) error {
	st := h.Stats()
	fmt.Printf("blocks:    %d (%d free)\n", st.Blocks, st.FreeBlocks)
	fmt.Printf("allocated: %s\n", humanize.IBytes(st.AllocatedBytes))
	fmt.Printf("free:      %s\n", humanize.IBytes(st.FreeBytes))
	fmt.Printf("headers:   %s\n", humanize.IBytes(st.HeaderBytes))
	fmt.Printf("break:     %s (%s grows, %s reuses)\n",
		humanize.IBytes(st.Brk), humanize.Comma(int64(st.Grows)), humanize.Comma(int64(st.Reuses)))
	return nil
}
