package export

import (
	"fmt"
	"sort"

	"ycscout/internal/logging"
	"ycscout/internal/types"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the workbook export writes to.
const SheetName = "YC Companies"

// WriteWorkbook writes all checkpointed records to an .xlsx workbook,
// one row per URL sorted for determinism. Errors on an empty result
// set so a typoed checkpoint path doesn't silently produce a blank
// spreadsheet.
func WriteWorkbook(path string, results map[string]types.CompanyRecord) error {
	if len(results) == 0 {
		return fmt.Errorf("no checkpointed rows to export")
	}

	urls := make([]string, 0, len(results))
	for url := range results {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name worksheet: %w", err)
	}

	header := make([]interface{}, len(types.Columns))
	for i, col := range types.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, url := range urls {
		rec := results[url]
		cells := rec.Row()
		row := make([]interface{}, len(cells))
		for j, cell := range cells {
			row[j] = cell
		}
		cellRef := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(SheetName, cellRef, &row); err != nil {
			return fmt.Errorf("write row for %s: %w", url, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	logging.Export("wrote %d rows to %s", len(urls), path)
	return nil
}
