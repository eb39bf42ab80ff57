// Package htmlsanitize strips markup from user-supplied text.
//
// Roadmap fields are plain text rendered by the client, so every tag is
// removed. The result is unescaped again so that "HTML & CSS" survives a
// round trip unchanged.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes all HTML elements from s and trims the result.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// PlainTexts applies PlainText to each element, dropping those left empty.
func PlainTexts(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = PlainText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
