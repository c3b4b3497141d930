// Package store persists scrape progress in a SQLite checkpoint so
// interrupted runs resume without re-fetching. One row per URL; rows
// survive process crashes because each page is committed as it lands.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ycscout/internal/logging"
	"ycscout/internal/types"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Checkpoint is a SQLite-backed scrape checkpoint.
type Checkpoint struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Stats summarizes checkpoint contents.
type Stats struct {
	Total int // checkpointed URLs
	Empty int // rows that carry no data beyond the URL
}

// Open initializes the checkpoint database at path, creating the
// schema on first use.
func Open(path string) (*Checkpoint, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create checkpoint directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("set journal_mode=WAL: %v", err)
	}

	c := &Checkpoint{db: db, path: path}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.Store("checkpoint open at %s", path)
	return c, nil
}

func (c *Checkpoint) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS companies (
	url        TEXT PRIMARY KEY,
	fields     TEXT NOT NULL,
	attempts   INTEGER NOT NULL DEFAULT 1,
	fetched_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	input       TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT
);`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate checkpoint schema: %w", err)
	}
	return nil
}

// Put records the scrape result for url. Re-scraping a URL replaces
// its row.
func (c *Checkpoint) Put(url string, rec types.CompanyRecord, attempts int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO companies (url, fields, attempts, fetched_at) VALUES (?, ?, ?, ?)`,
		url, string(fields), attempts, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store %s: %w", url, err)
	}
	logging.StoreDebug("checkpointed %s (attempts=%d)", url, attempts)
	return nil
}

// Get returns the record for url, with found=false when absent.
func (c *Checkpoint) Get(url string) (types.CompanyRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fields string
	err := c.db.QueryRow(`SELECT fields FROM companies WHERE url = ?`, url).Scan(&fields)
	if err == sql.ErrNoRows {
		return types.CompanyRecord{}, false, nil
	}
	if err != nil {
		return types.CompanyRecord{}, false, fmt.Errorf("load %s: %w", url, err)
	}

	var rec types.CompanyRecord
	if err := json.Unmarshal([]byte(fields), &rec); err != nil {
		return types.CompanyRecord{}, false, fmt.Errorf("decode %s: %w", url, err)
	}
	return rec, true, nil
}

// Completed returns the set of checkpointed URLs.
func (c *Checkpoint) Completed() (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT url FROM companies`)
	if err != nil {
		return nil, fmt.Errorf("list urls: %w", err)
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		done[url] = struct{}{}
	}
	return done, rows.Err()
}

// All returns every checkpointed record keyed by URL.
func (c *Checkpoint) All() (map[string]types.CompanyRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT url, fields FROM companies`)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	defer rows.Close()

	out := make(map[string]types.CompanyRecord)
	for rows.Next() {
		var url, fields string
		if err := rows.Scan(&url, &fields); err != nil {
			return nil, err
		}
		var rec types.CompanyRecord
		if err := json.Unmarshal([]byte(fields), &rec); err != nil {
			logging.Store("skipping undecodable row %s: %v", url, err)
			continue
		}
		out[url] = rec
	}
	return out, rows.Err()
}

// Stats counts checkpointed rows and how many came back empty.
func (c *Checkpoint) Stats() (Stats, error) {
	all, err := c.All()
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Total: len(all)}
	for _, rec := range all {
		if rec.Empty() {
			s.Empty++
		}
	}
	return s, nil
}

// BeginRun records a new run and returns its ID.
func (c *Checkpoint) BeginRun(input string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	_, err := c.db.Exec(
		`INSERT INTO runs (id, input, started_at) VALUES (?, ?, ?)`,
		id, input, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's completion time.
func (c *Checkpoint) FinishRun(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	return nil
}

// Path returns the checkpoint's database path.
func (c *Checkpoint) Path() string {
	return c.path
}

// Close releases the database handle.
func (c *Checkpoint) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}
