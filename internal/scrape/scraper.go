// Package scrape runs the worker pool that turns a link list into
// checkpointed company records.
package scrape

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"ycscout/internal/links"
	"ycscout/internal/logging"
	"ycscout/internal/parse"
	"ycscout/internal/types"

	"golang.org/x/sync/errgroup"
)

// Fetcher pulls a page body with retries. Implemented by fetch.Client.
type Fetcher interface {
	GetWithRetry(ctx context.Context, url string) (string, error)
}

// Renderer loads a page through a real browser. Implemented by
// browser.Renderer; nil disables the fallback.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// CheckpointStore persists per-URL results. Implemented by
// store.Checkpoint.
type CheckpointStore interface {
	Put(url string, rec types.CompanyRecord, attempts int) error
	Completed() (map[string]struct{}, error)
}

// Options configures a scrape run.
type Options struct {
	Concurrency int
	Resume      bool          // skip URLs already in the checkpoint
	PaceDelay   time.Duration // per-worker delay between requests
}

// Summary carries the counters a run reports on exit.
type Summary struct {
	Total    int // unique URLs in the input
	Scraped  int // rows with at least one extracted field
	Empty    int // fetched but nothing extractable
	Skipped  int // already checkpointed before this run
	Failed   int // retries exhausted
	Duration time.Duration
}

// Scraper coordinates fetch, parse, and checkpoint for a link list.
type Scraper struct {
	fetcher  Fetcher
	renderer Renderer
	ckpt     CheckpointStore
	opts     Options
}

// New builds a Scraper. renderer may be nil.
func New(fetcher Fetcher, ckpt CheckpointStore, renderer Renderer, opts Options) *Scraper {
	if opts.Concurrency < 1 {
		opts.Concurrency = 8
	}
	return &Scraper{fetcher: fetcher, renderer: renderer, ckpt: ckpt, opts: opts}
}

type job struct {
	ordinal int // 1-based position for progress logs
	url     string
}

// Run scrapes every pending URL. It returns the summary alongside any
// error; on cancellation the summary covers the work finished so far,
// all of it already checkpointed.
func (s *Scraper) Run(ctx context.Context, urls []string) (Summary, error) {
	start := time.Now()

	unique := links.Dedupe(urls)
	summary := Summary{Total: len(unique)}

	done := map[string]struct{}{}
	if s.opts.Resume {
		var err error
		done, err = s.ckpt.Completed()
		if err != nil {
			return summary, err
		}
	}

	jobs := make(chan job, len(unique))
	for i, url := range unique {
		if _, ok := done[url]; ok {
			summary.Skipped++
			continue
		}
		jobs <- job{ordinal: i + 1, url: url}
	}
	close(jobs)

	if summary.Skipped > 0 {
		logging.Scrape("resuming: %d/%d already checkpointed", summary.Skipped, summary.Total)
	}

	var scraped, empty, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < s.opts.Concurrency; w++ {
		worker := w
		g.Go(func() error {
			for j := range jobs {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Scrape("[worker %d] starting %d/%d: %s", worker, j.ordinal, summary.Total, j.url)

				switch rec, err := s.scrapeOne(ctx, j.url); {
				case err != nil && ctx.Err() != nil:
					return ctx.Err()
				case err != nil:
					failed.Add(1)
					logging.Scrape("[worker %d] no data after retries %d/%d: %s", worker, j.ordinal, summary.Total, j.url)
				case rec.Empty():
					empty.Add(1)
					logging.Scrape("[worker %d] empty %d/%d: %s", worker, j.ordinal, summary.Total, j.url)
				default:
					scraped.Add(1)
					logging.Scrape("[worker %d] success %d/%d: %s", worker, j.ordinal, summary.Total, j.url)
				}

				if err := s.pace(ctx); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err := g.Wait()

	summary.Scraped = int(scraped.Load())
	summary.Empty = int(empty.Load())
	summary.Failed = int(failed.Load())
	summary.Duration = time.Since(start)
	return summary, err
}

// scrapeOne fetches, parses, and checkpoints a single URL. A fetch
// failure still checkpoints a bare row so the URL is not retried on
// resume; the returned error marks it as failed for the counters.
func (s *Scraper) scrapeOne(ctx context.Context, url string) (types.CompanyRecord, error) {
	body, fetchErr := s.fetcher.GetWithRetry(ctx, url)
	if fetchErr != nil {
		rec := types.CompanyRecord{YCLink: url}
		if ctx.Err() == nil {
			if err := s.ckpt.Put(url, rec, 1); err != nil {
				logging.Scrape("checkpoint write failed for %s: %v", url, err)
			}
		}
		return rec, fetchErr
	}

	rec := parse.Page(body, url)

	// A page that renders its data client-side parses empty over plain
	// HTTP; a browser pass can still recover it.
	if rec.Empty() && s.renderer != nil && !parse.HasNextData(body) {
		if rendered, err := s.renderer.Render(ctx, url); err == nil {
			rec = parse.Page(rendered, url)
		} else {
			logging.Scrape("browser fallback failed for %s: %v", url, err)
		}
	}

	if err := s.ckpt.Put(url, rec, 1); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Scraper) pace(ctx context.Context) error {
	if s.opts.PaceDelay <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
	timer := time.NewTimer(s.opts.PaceDelay + jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
