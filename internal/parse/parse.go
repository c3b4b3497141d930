// Package parse extracts company fields from a YC company page.
//
// Two extraction paths run over the same document: the structured path
// decodes the embedded __NEXT_DATA__ JSON, the fallback path applies
// loose heuristics to the rendered HTML. Structured values always win;
// the fallback only fills fields the structured path left empty.
package parse

import (
	"strings"

	"ycscout/internal/logging"
	"ycscout/internal/types"

	"golang.org/x/net/html"
)

// Page parses the page content for url and returns the extracted
// record. Parsing never fails hard: unusable content yields a record
// carrying only the URL.
func Page(content, url string) types.CompanyRecord {
	rec := types.CompanyRecord{YCLink: url}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		logging.Parse("unparseable HTML for %s: %v", url, err)
		return rec
	}

	structured, ok := FromNextData(doc)
	if ok {
		logging.ParseDebug("__NEXT_DATA__ hit for %s", url)
	}
	fallback := FromHTML(doc)

	return rec.Merge(structured).Merge(fallback)
}

// HasNextData reports whether the document carries a usable
// __NEXT_DATA__ payload. The scraper uses this to decide whether a
// rendered-page retry could help.
func HasNextData(content string) bool {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return false
	}
	return nextDataPayload(doc) != ""
}

// nextDataPayload returns the raw JSON text of the __NEXT_DATA__ script,
// or "" when absent.
func nextDataPayload(doc *html.Node) string {
	var payload string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if payload != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && attr(n, "id") == "__NEXT_DATA__" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			payload = strings.TrimSpace(sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return payload
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
