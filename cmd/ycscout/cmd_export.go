package main

import (
	"ycscout/internal/config"
	"ycscout/internal/export"
	"ycscout/internal/logging"
	"ycscout/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportCheckpoint string
	exportOutput     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a checkpoint to an Excel workbook",
	Long: `Flattens the checkpoint database into a "YC Companies" worksheet
with one row per scraped link and the standard ten columns.

Example:
  ycscout export --checkpoint companies.csv.ckpt.db --output companies.xlsx`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportCheckpoint, "checkpoint", "", "checkpoint database path (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "destination .xlsx file (required)")
	_ = exportCmd.MarkFlagRequired("checkpoint")
	_ = exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging.Workspace, cfg.Logging.Debug); err != nil {
		return err
	}
	defer logging.CloseAll()

	ckpt, err := store.Open(exportCheckpoint)
	if err != nil {
		return err
	}
	defer ckpt.Close()

	results, err := ckpt.All()
	if err != nil {
		return err
	}
	if err := export.WriteWorkbook(exportOutput, results); err != nil {
		return err
	}

	logger.Info("workbook written",
		zap.Int("rows", len(results)),
		zap.String("output", exportOutput))
	return nil
}
