// Package inputval holds field-level checks shared by the request handlers.
package inputval

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/urlutil"
)

// Length limits for roadmap and profile fields, counted in runes.
const (
	MaxTitleLen       = 200
	MaxCategoryLen    = 100
	MaxDescriptionLen = 5000
	MaxTagLen         = 50
	MaxTags           = 20
	MaxSteps          = 200
	MaxResources      = 50
	MaxNameLen        = 200
)

// IsValidEmail performs a structural check: one @, a non-empty local part
// and domain, no whitespace, and no leading, trailing, or doubled dots in
// either half. It does not verify deliverability.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return false
	}
	return validDotAtoms(s[:at]) && validDotAtoms(s[at+1:])
}

func validDotAtoms(s string) bool {
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	return !strings.Contains(s, "..")
}

// IsHTTPURL reports whether s is an absolute http or https URL.
func IsHTTPURL(s string) bool {
	return urlutil.IsValidAbsHTTPURL(strings.TrimSpace(s))
}

// TooLong reports whether s exceeds max runes.
func TooLong(s string, max int) bool {
	return len([]rune(s)) > max
}
