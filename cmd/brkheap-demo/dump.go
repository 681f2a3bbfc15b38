package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Replay the smoke sequence and print the block list as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHeap()
			if err != nil {
				return err
			}
			defer h.Close()
			if err := replay(os.Stderr, h); err != nil {
				return err
			}
			if err := h.WriteJSON(os.Stdout); err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	})
}
