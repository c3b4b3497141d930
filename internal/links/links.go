// Package links loads the input link list for a scrape run.
package links

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column is the required header of the input CSV.
const Column = "YC Link"

// Load reads the input CSV and returns the company-page URLs in file
// order. Blank cells are skipped. The file must carry a "YC Link" column.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses CSV content from r. Split out from Load for testability.
func Read(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, we only need one column

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == Column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("input CSV must have a %q column", Column)
	}

	var urls []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col >= len(row) {
			continue
		}
		u := strings.TrimSpace(row[col])
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// Dedupe returns urls with duplicates removed, preserving first-seen
// order. The scraper fetches each URL once; output still keeps one row
// per input row.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
