package parse

import (
	"strings"

	"ycscout/internal/types"

	"golang.org/x/net/html"
)

// FromHTML extracts company fields with loose heuristics over the
// rendered page: right-rail label/value pairs, the first external
// anchor as the website, LinkedIn anchors, and names adjacent to
// "Founder" text. Used when __NEXT_DATA__ is missing or incomplete.
func FromHTML(doc *html.Node) types.CompanyRecord {
	var rec types.CompanyRecord

	texts := collectTexts(doc)

	rec.PrimaryPartner = labelValue(texts, "Primary Partner")
	rec.Status = labelValue(texts, "Status")
	rec.Location = labelValue(texts, "Location")
	rec.Batch = labelValue(texts, "Batch")
	if n, ok := types.ParseLooseInt(labelValue(texts, "Founded")); ok {
		rec.FoundedYear = n
	}
	if n, ok := types.ParseLooseInt(labelValue(texts, "Team Size", "Team size")); ok {
		rec.TeamSize = n
	}

	var linkedin []string
	forEachAnchor(doc, func(href string) {
		if rec.Website == "" && strings.HasPrefix(href, "http") && !strings.Contains(href, "ycombinator.com") {
			rec.Website = href
		}
		if strings.Contains(href, "linkedin.com") {
			linkedin = append(linkedin, href)
		}
	})
	rec.FoundersLinkedIn = types.JoinDistinct(linkedin)
	rec.ActiveFounders = types.JoinDistinct(founderNames(texts))

	return rec
}

// textEntry is one non-blank text node in document order.
type textEntry struct {
	node *html.Node
	text string
}

func collectTexts(doc *html.Node) []textEntry {
	var out []textEntry
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, textEntry{node: n, text: t})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// labelValue finds a text node that is exactly one of the labels
// (optionally with a trailing colon) and returns the next text node,
// mirroring how the right rail renders "Label:" followed by the value.
func labelValue(texts []textEntry, labels ...string) string {
	for i, entry := range texts {
		if !isLabel(entry.text, labels) {
			continue
		}
		if i+1 < len(texts) {
			return texts[i+1].text
		}
	}
	return ""
}

func isLabel(text string, labels []string) bool {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ":"))
	for _, label := range labels {
		if strings.EqualFold(text, label) {
			return true
		}
	}
	return false
}

func forEachAnchor(doc *html.Node, fn func(href string)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); href != "" {
				fn(href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// founderNames grabs short name-looking text adjacent to "Founder"
// markers. Crude, but only consulted when the structured path found
// nothing.
func founderNames(texts []textEntry) []string {
	var names []string
	for _, entry := range texts {
		if !strings.Contains(strings.ToLower(entry.text), "founder") {
			continue
		}
		parent := entry.node.Parent
		if parent == nil {
			continue
		}
		for _, sib := range []*html.Node{parent.PrevSibling, parent.NextSibling} {
			if sib == nil {
				continue
			}
			txt := strings.TrimSpace(nodeText(sib))
			if txt == "" || len(strings.Fields(txt)) > 5 {
				continue
			}
			if strings.Contains(strings.ToLower(txt), "founder") {
				continue
			}
			names = append(names, txt)
		}
	}
	return names
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
