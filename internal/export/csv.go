// Package export writes scrape results to CSV and Excel.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"ycscout/internal/logging"
	"ycscout/internal/types"
)

// WriteCSV writes one row per input URL, in input order, with the fixed
// column header. URLs that produced nothing still get a row carrying
// only the link, so the output lines up with the input sheet.
func WriteCSV(path string, urls []string, results map[string]types.CompanyRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(types.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, url := range urls {
		rec, ok := results[url]
		if !ok {
			rec = types.CompanyRecord{YCLink: url}
		}
		if err := w.Write(rec.Row()); err != nil {
			return fmt.Errorf("write row for %s: %w", url, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logging.Export("wrote %d rows to %s", len(urls), path)
	return nil
}
