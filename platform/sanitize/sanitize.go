// Package sanitize normalizes free text produced outside our control before
// it is returned to clients.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// markdownEmphasis matches bold and italic markers around a run of text
	markdownEmphasis = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// PlainText strips HTML and inline markdown emphasis and collapses all
// whitespace runs, including newlines, to a single space.
func PlainText(s string) string {
	result := StripHTML(s)
	result = markdownEmphasis.ReplaceAllString(result, "$2")
	result = strings.TrimLeft(result, "#> ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(result, " "))
}
