package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ycscout/internal/browser"
	"ycscout/internal/config"
	"ycscout/internal/export"
	"ycscout/internal/fetch"
	"ycscout/internal/links"
	"ycscout/internal/logging"
	"ycscout/internal/scrape"
	"ycscout/internal/store"
	"ycscout/internal/ux"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scrapeInput       string
	scrapeOutput      string
	scrapeCheckpoint  string
	scrapeConcurrency int
	scrapeRPM         int
	scrapeResume      bool
	scrapeBrowser     bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape company pages listed in a CSV",
	Long: `Reads the input CSV (must have a "YC Link" column), fetches every
page, and writes one output row per input row in the same order.

Each scraped page is checkpointed immediately; rerun with --resume to
pick up where an interrupted run stopped.

Example:
  ycscout scrape --input links.csv --output companies.csv --rpm 60 --resume`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeInput, "input", "i", "", "CSV file with a \"YC Link\" column (required)")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "output CSV path (required)")
	scrapeCmd.Flags().StringVar(&scrapeCheckpoint, "checkpoint", "", "checkpoint path (default: <output>.ckpt.db)")
	scrapeCmd.Flags().IntVarP(&scrapeConcurrency, "concurrency", "c", 0, "number of concurrent workers")
	scrapeCmd.Flags().IntVar(&scrapeRPM, "rpm", 0, "max requests per minute, process-wide")
	scrapeCmd.Flags().BoolVar(&scrapeResume, "resume", false, "skip URLs already checkpointed")
	scrapeCmd.Flags().BoolVar(&scrapeBrowser, "browser", false, "retry empty pages through a headless browser")
	_ = scrapeCmd.MarkFlagRequired("input")
	_ = scrapeCmd.MarkFlagRequired("output")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Scrape.Concurrency = scrapeConcurrency
	}
	if cmd.Flags().Changed("rpm") {
		cfg.Scrape.RPM = scrapeRPM
	}
	if cmd.Flags().Changed("browser") {
		cfg.Browser.Enabled = scrapeBrowser
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(cfg.Logging.Workspace, cfg.Logging.Debug); err != nil {
		return err
	}
	defer logging.CloseAll()
	logging.Boot("scrape: input=%s output=%s concurrency=%d rpm=%d resume=%v",
		scrapeInput, scrapeOutput, cfg.Scrape.Concurrency, cfg.Scrape.RPM, scrapeResume)

	urls, err := links.Load(scrapeInput)
	if err != nil {
		return err
	}
	logger.Info("loaded links", zap.Int("count", len(urls)), zap.String("input", scrapeInput))

	ckptPath := scrapeCheckpoint
	if ckptPath == "" {
		ckptPath = scrapeOutput + ".ckpt.db"
	}
	ckpt, err := store.Open(ckptPath)
	if err != nil {
		return err
	}
	defer ckpt.Close()

	runID, err := ckpt.BeginRun(scrapeInput)
	if err != nil {
		return err
	}

	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return err
	}
	client := fetch.New(fetch.Options{
		RPM:       cfg.Scrape.RPM,
		Retries:   cfg.Fetch.Retries,
		Timeout:   timeout,
		UserAgent: cfg.Fetch.UserAgent,
	})

	var renderer scrape.Renderer
	if cfg.Browser.Enabled {
		pageTimeout, err := cfg.PageTimeout()
		if err != nil {
			return err
		}
		r := browser.New(cfg.Browser.Bin, cfg.Headless(), pageTimeout)
		defer func() { _ = r.Close() }()
		renderer = r
		logger.Info("browser fallback enabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scrape.New(client, ckpt, renderer, scrape.Options{
		Concurrency: cfg.Scrape.Concurrency,
		Resume:      scrapeResume,
		PaceDelay:   time.Minute / time.Duration(cfg.Scrape.RPM),
	})

	summary, runErr := s.Run(ctx, urls)
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return runErr
	}

	// Write whatever made it into the checkpoint, interrupted or not.
	results, err := ckpt.All()
	if err != nil {
		return err
	}
	if err := export.WriteCSV(scrapeOutput, urls, results); err != nil {
		return err
	}

	if interrupted {
		logger.Warn("interrupted; partial output written, rerun with --resume to continue")
	} else if err := ckpt.FinishRun(runID); err != nil {
		logger.Warn("could not finalize run record", zap.Error(err))
	}

	fmt.Print(ux.RenderSummary(summary, scrapeOutput, ckptPath))
	return nil
}
