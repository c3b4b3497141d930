// Package browser provides an optional rendered-page fallback. Some
// company pages only embed __NEXT_DATA__ after client-side render; when
// enabled, the scraper retries those through a shared headless browser.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ycscout/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Renderer owns one browser process for the whole run; each Render call
// uses a short-lived tab.
type Renderer struct {
	mu          sync.Mutex
	browser     *rod.Browser
	bin         string
	headless    bool
	pageTimeout time.Duration
}

// New builds a Renderer. bin may be empty to let the launcher find a
// local Chrome.
func New(bin string, headless bool, pageTimeout time.Duration) *Renderer {
	if pageTimeout <= 0 {
		pageTimeout = 45 * time.Second
	}
	return &Renderer{bin: bin, headless: headless, pageTimeout: pageTimeout}
}

func (r *Renderer) ensureStarted(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return nil
	}

	launch := launcher.New().Headless(r.headless)
	if r.bin != "" {
		launch = launch.Bin(r.bin)
	}
	controlURL, err := launch.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = browser
	logging.Fetch("headless browser started")
	return nil
}

// Render loads url in a fresh tab, waits for the page to settle, and
// returns the rendered HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if err := r.ensureStarted(ctx); err != nil {
		return "", err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("open page %s: %w", url, err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx).Timeout(r.pageTimeout)
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load %s: %w", url, err)
	}

	content, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read DOM %s: %w", url, err)
	}
	logging.FetchDebug("rendered %s (%d bytes)", url, len(content))
	return content, nil
}

// Close shuts the browser down. Safe to call when never started.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
