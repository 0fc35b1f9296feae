package dcparse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML converts an HTML snippet (as comments arrive from the comment
// API) to plain text, preserving visible content only (spec.md §4.3 "HTML
// stripper"). A <br> separates the text on either side by a space. Grounded
// on the teacher's goquery-based text extraction in pkg/process/content.go.
func StripHTML(htmlSnippet string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSnippet))
	if err != nil {
		return strings.TrimSpace(htmlSnippet)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	text := doc.Text()
	return strings.TrimSpace(collapseWhitespace(text))
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
