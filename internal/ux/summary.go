// Package ux renders the end-of-run terminal summary.
package ux

import (
	"fmt"
	"strings"
	"time"

	"ycscout/internal/scrape"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// RenderSummary formats a scrape summary for the terminal. output and
// checkpoint are file paths; either may be empty.
func RenderSummary(s scrape.Summary, output, checkpoint string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Scrape complete"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  %d/%d scraped\n", okStyle.Render("✓"), s.Scraped, s.Total))
	if s.Skipped > 0 {
		b.WriteString(fmt.Sprintf("  %s  %d resumed from checkpoint\n", dimStyle.Render("→"), s.Skipped))
	}
	if s.Empty > 0 {
		b.WriteString(fmt.Sprintf("  %s  %d pages yielded no data\n", warnStyle.Render("!"), s.Empty))
	}
	if s.Failed > 0 {
		b.WriteString(fmt.Sprintf("  %s  %d failed after retries\n", badStyle.Render("✗"), s.Failed))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  took %s", s.Duration.Round(time.Millisecond))))
	b.WriteString("\n")
	if output != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  output     %s", output)))
		b.WriteString("\n")
	}
	if checkpoint != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  checkpoint %s", checkpoint)))
		b.WriteString("\n")
	}
	return b.String()
}
