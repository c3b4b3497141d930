// Package config loads ycscout configuration from an optional YAML file
// with environment overrides. Precedence: flags > env > file > defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ycscout configuration.
type Config struct {
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Browser BrowserConfig `yaml:"browser"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScrapeConfig configures the worker pool.
type ScrapeConfig struct {
	Concurrency int `yaml:"concurrency"` // worker count
	RPM         int `yaml:"rpm"`         // max requests per minute, process-wide
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	Retries   int    `yaml:"retries"`
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// BrowserConfig configures the optional rendered-page fallback.
type BrowserConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Bin         string `yaml:"bin"` // chrome binary; empty lets the launcher decide
	Headless    *bool  `yaml:"headless"`
	PageTimeout string `yaml:"page_timeout"`
}

// LoggingConfig configures debug file logging.
type LoggingConfig struct {
	Debug     bool   `yaml:"debug"`
	Workspace string `yaml:"workspace"` // log root; defaults to cwd
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	headless := true
	return &Config{
		Scrape: ScrapeConfig{
			Concurrency: 8,
			RPM:         120,
		},
		Fetch: FetchConfig{
			Retries: 4,
			Timeout: "30s",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		},
		Browser: BrowserConfig{
			Enabled:     false,
			Headless:    &headless,
			PageTimeout: "45s",
		},
	}
}

// Load reads configuration from path, layered over defaults, then
// applies environment overrides. An empty path or missing file is not
// an error; env overrides still apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("YCSCOUT_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scrape.Concurrency = n
		}
	}
	if v := os.Getenv("YCSCOUT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scrape.RPM = n
		}
	}
	if v := os.Getenv("YCSCOUT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Fetch.Retries = n
		}
	}
	if v := os.Getenv("YCSCOUT_USER_AGENT"); v != "" {
		c.Fetch.UserAgent = v
	}
	if v := os.Getenv("YCSCOUT_BROWSER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Enabled = b
		}
	}
	if v := os.Getenv("YCSCOUT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Debug = b
		}
	}
}

// Validate rejects values the scraper cannot run with.
func (c *Config) Validate() error {
	if c.Scrape.Concurrency < 1 {
		return fmt.Errorf("scrape.concurrency must be >= 1, got %d", c.Scrape.Concurrency)
	}
	if c.Scrape.RPM < 1 {
		return fmt.Errorf("scrape.rpm must be >= 1, got %d", c.Scrape.RPM)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("fetch.retries must be >= 0, got %d", c.Fetch.Retries)
	}
	if _, err := c.FetchTimeout(); err != nil {
		return fmt.Errorf("fetch.timeout: %w", err)
	}
	if _, err := c.PageTimeout(); err != nil {
		return fmt.Errorf("browser.page_timeout: %w", err)
	}
	return nil
}

// FetchTimeout parses the fetch timeout, defaulting to 30s.
func (c *Config) FetchTimeout() (time.Duration, error) {
	return parseDuration(c.Fetch.Timeout, 30*time.Second)
}

// PageTimeout parses the browser page-load timeout, defaulting to 45s.
func (c *Config) PageTimeout() (time.Duration, error) {
	return parseDuration(c.Browser.PageTimeout, 45*time.Second)
}

// Headless reports whether the fallback browser runs headless.
// Unset means headless.
func (c *Config) Headless() bool {
	if c.Browser.Headless == nil {
		return true
	}
	return *c.Browser.Headless
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
