package main

import (
	"fmt"
	"os"
	"strings"

	brk "brk_heap"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	// 全局参数
	backing string
	path    string
	maxSize string
	checked bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "brkheap-demo",
	Short: "Exercise a brk-style heap and print its layout",
	Long: `brkheap-demo opens a heap backed by an anonymous mapping, a file or a
plain Go slice, replays a small malloc/free sequence against it and reports
what happened to the break and the block list.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backing, "backing", "anon", "Heap backing: anon, file or slice")
	rootCmd.PersistentFlags().StringVar(&path, "path", "brkheap.data", "Backing file for --backing=file")
	rootCmd.PersistentFlags().StringVar(&maxSize, "max-size", "64MiB", "Upper bound of the break")
	rootCmd.PersistentFlags().BoolVar(&checked, "checked", false, "Track every issued pointer")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log heap growth to stderr")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseBacking(s string) (brk.Backing, error) {
	for _, b := range []brk.Backing{brk.BackingAnon, brk.BackingFile, brk.BackingSlice} {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown backing %q", s)
}

// openHeap 按全局参数打开堆
func openHeap() (*brk.Heap, error) {
	b, err := parseBacking(backing)
	if err != nil {
		return nil, err
	}
	size, err := humanize.ParseBytes(maxSize)
	if err != nil {
		return nil, fmt.Errorf("bad --max-size: %w", err)
	}
	opts := brk.Options{
		Backing: b,
		Path:    path,
		MaxSize: int(size),
		Checked: checked,
	}
	if verbose {
		opts.Logger = slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(os.Stderr))
	}
	return brk.Open(opts)
}
