// Package excerpt produces short plain-text summaries of markdown content
// for newsletter previews.
package excerpt

import (
	"regexp"
	"strings"
)

var (
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	codeFenceRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	markerRe     = regexp.MustCompile(`(?m)^[#>\-*+\s]+|[*_~#]+`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Summarize strips markdown and HTML markup from raw, collapses whitespace
// and truncates the result to at most limit characters, appending an ellipsis
// when the text was cut. Truncation counts runes, not bytes.
func Summarize(raw string, limit int) string {
	s := codeFenceRe.ReplaceAllString(raw, " ")
	s = imageRe.ReplaceAllString(s, " ")
	s = linkRe.ReplaceAllString(s, "$1")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = markerRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))

	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := strings.TrimRight(string(runes[:limit]), " ")
	return cut + "…"
}
