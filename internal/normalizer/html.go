package normalizer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextLines returns every non-blank text node of an HTML fragment in document
// order, exactly as it appears in the markup
func TextLines(fragment string) []string {
	lines := []string{}
	if strings.TrimSpace(fragment) == "" {
		return lines
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return lines
	}

	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				if text := child.Text(); strings.TrimSpace(text) != "" {
					lines = append(lines, text)
				}
				return
			}
			walk(child)
		})
	}
	walk(doc.Selection)

	return lines
}
