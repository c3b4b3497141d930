package main

import (
	"fmt"

	"ycscout/internal/store"

	"github.com/spf13/cobra"
)

var statusCheckpoint string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize checkpoint progress",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusCheckpoint, "checkpoint", "", "checkpoint database path (required)")
	_ = statusCmd.MarkFlagRequired("checkpoint")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ckpt, err := store.Open(statusCheckpoint)
	if err != nil {
		return err
	}
	defer ckpt.Close()

	stats, err := ckpt.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("checkpoint: %s\n", statusCheckpoint)
	fmt.Printf("  rows:  %d\n", stats.Total)
	fmt.Printf("  data:  %d\n", stats.Total-stats.Empty)
	fmt.Printf("  empty: %d\n", stats.Empty)
	return nil
}
