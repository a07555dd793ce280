// Package htmltext normalizes the rich-text bodies the Base Hiring API
// returns (job descriptions, evaluations, messages) into plain text.
package htmltext

import (
	"html"
	"regexp"
	"strings"
)

var (
	breakTags  = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)
	blankLines = regexp.MustCompile(`\n\s*\n`)
	hrefAttr   = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)
)

// Strip converts markup into plain text: <br> becomes a newline, every other
// tag is dropped, entities are unescaped and runs of blank lines collapse.
func Strip(markup string) string {
	if markup == "" {
		return ""
	}

	text := breakTags.ReplaceAllString(markup, "\n")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankLines.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}

// Link is an anchor found inside markup. Name falls back to the last path
// segment of the URL when the anchor has no text.
type Link struct {
	URL  string
	Name string
}

// Links extracts every anchor from the markup. Used to discover documents
// referenced from message bodies when they are not proper attachments.
func Links(markup string) []Link {
	if markup == "" {
		return nil
	}

	var links []Link
	for _, m := range hrefAttr.FindAllStringSubmatch(markup, -1) {
		url := strings.TrimSpace(m[1])
		if url == "" {
			continue
		}

		name := strings.TrimSpace(Strip(m[2]))
		if name == "" {
			if idx := strings.LastIndex(url, "/"); idx >= 0 {
				name = url[idx+1:]
			} else {
				name = url
			}
		}

		links = append(links, Link{URL: url, Name: name})
	}

	return links
}
