// Package normalize canonicalizes user-supplied values before they are
// validated or stored.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to a single space. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lowercases a role name. The legacy "viewer" role maps to
// "learner".
func Role(s string) string {
	r := strings.ToLower(strings.TrimSpace(s))
	if r == "viewer" {
		return "learner"
	}
	return r
}

// Category is Name under another name: categories are free text, displayed
// as entered.
func Category(s string) string {
	return Name(s)
}

// Tags trims each tag, drops empties, and removes case-insensitive
// duplicates while keeping the first spelling seen. Order is preserved.
func Tags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = Name(t)
		if t == "" {
			continue
		}
		k := text.Fold(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Resources trims each resource link and drops empties.
func Resources(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
