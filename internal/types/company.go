// Package types defines the company record shared across the scrape,
// checkpoint, and export layers.
package types

import (
	"regexp"
	"strconv"
	"strings"
)

// Columns is the fixed output column order. Every writer (CSV, Excel)
// emits exactly these headers in this order.
var Columns = []string{
	"YC Link",
	"Active Founders",
	"Founders LinkedIn Link",
	"Status",
	"Website",
	"Primary Partner",
	"Founded Year",
	"Team Size",
	"Batch",
	"Location",
}

// CompanyRecord holds the extracted fields for one company page.
// JSON keys match the output column names so checkpoint rows and
// spreadsheet headers stay interchangeable.
type CompanyRecord struct {
	YCLink           string `json:"YC Link"`
	ActiveFounders   string `json:"Active Founders,omitempty"`
	FoundersLinkedIn string `json:"Founders LinkedIn Link,omitempty"`
	Status           string `json:"Status,omitempty"`
	Website          string `json:"Website,omitempty"`
	PrimaryPartner   string `json:"Primary Partner,omitempty"`
	FoundedYear      int    `json:"Founded Year,omitempty"`
	TeamSize         int    `json:"Team Size,omitempty"`
	Batch            string `json:"Batch,omitempty"`
	Location         string `json:"Location,omitempty"`
}

// Empty reports whether the record carries no data beyond the URL itself.
func (r CompanyRecord) Empty() bool {
	return r.ActiveFounders == "" &&
		r.FoundersLinkedIn == "" &&
		r.Status == "" &&
		r.Website == "" &&
		r.PrimaryPartner == "" &&
		r.FoundedYear == 0 &&
		r.TeamSize == 0 &&
		r.Batch == "" &&
		r.Location == ""
}

// Row returns the record's values in Columns order. Zero values render
// as empty cells.
func (r CompanyRecord) Row() []string {
	return []string{
		r.YCLink,
		r.ActiveFounders,
		r.FoundersLinkedIn,
		r.Status,
		r.Website,
		r.PrimaryPartner,
		intCell(r.FoundedYear),
		intCell(r.TeamSize),
		r.Batch,
		r.Location,
	}
}

func intCell(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Merge fills empty fields of r from other. Existing values always win,
// so callers layer sources from most to least trusted.
func (r CompanyRecord) Merge(other CompanyRecord) CompanyRecord {
	if r.YCLink == "" {
		r.YCLink = other.YCLink
	}
	if r.ActiveFounders == "" {
		r.ActiveFounders = other.ActiveFounders
	}
	if r.FoundersLinkedIn == "" {
		r.FoundersLinkedIn = other.FoundersLinkedIn
	}
	if r.Status == "" {
		r.Status = other.Status
	}
	if r.Website == "" {
		r.Website = other.Website
	}
	if r.PrimaryPartner == "" {
		r.PrimaryPartner = other.PrimaryPartner
	}
	if r.FoundedYear == 0 {
		r.FoundedYear = other.FoundedYear
	}
	if r.TeamSize == 0 {
		r.TeamSize = other.TeamSize
	}
	if r.Batch == "" {
		r.Batch = other.Batch
	}
	if r.Location == "" {
		r.Location = other.Location
	}
	return r
}

var digitRun = regexp.MustCompile(`\d+`)

// ParseLooseInt extracts an integer from arbitrary text. Accepts clean
// numbers ("2019") as well as decorated ones ("Founded 2019", "~25 people");
// the first digit run wins.
func ParseLooseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	m := digitRun.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// JoinDistinct joins non-blank values with "; ", deduping while
// preserving first-seen order.
func JoinDistinct(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, "; ")
}
