// Package htmldoc provides a failure-free HTML document loader and the
// markup rendering helpers shared by the detection core and the reporters.
//
// Loading never returns an error: golang.org/x/net/html builds a best-effort
// tree for arbitrarily malformed input, and completely unparseable input
// degrades to an empty, still query-able tree. The parser resolves no
// external entities and performs no I/O.
package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is an explicit, read-only handle over one parsed HTML tree.
// There is no ambient parsing context; every traversal starts from the
// handle the caller was given.
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

// Load parses raw markup into a Document. It tolerates unclosed tags, stray
// characters, and non-HTML input, and never fails.
func Load(markup string) *Document {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse only errors when the reader does; a string reader
		// cannot, but keep the degenerate empty tree as a guard.
		root = &html.Node{Type: html.DocumentNode}
	}
	return &Document{root: root, doc: goquery.NewDocumentFromNode(root)}
}

// Find runs a CSS selector query against the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Selection returns the document-level selection for callers that need to
// compose their own traversals.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// OuterHTML renders the outer markup of the first element in s. Render
// failures and empty selections yield the empty string; the detection
// pipeline treats that as "no markup available" rather than an error.
func OuterHTML(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	markup, err := goquery.OuterHtml(s.First())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markup)
}
