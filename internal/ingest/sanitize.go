package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// StripTags flattens any HTML markup in feed text down to its visible
// words. Plain text passes through untouched apart from whitespace
// normalization.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return collapse(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	return collapse(extractText(doc))
}

func extractText(n *html.Node) string {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		} else if c.Type == html.ElementNode {
			childText := extractText(c)
			if childText != "" {
				if text.Len() > 0 {
					text.WriteString(" ")
				}
				text.WriteString(childText)
			}
		}
	}
	return text.String()
}

func collapse(s string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
}
