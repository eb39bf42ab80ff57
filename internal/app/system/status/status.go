// Package status defines the lifecycle states a roadmap can be in.
//
// Archiving replaces physical deletion. Stores filter on Active by default,
// so an archived roadmap disappears from every listing but stays on disk.
package status

const (
	Active   = "active"
	Archived = "archived"
)

// IsValid reports whether s is a known status value.
func IsValid(s string) bool {
	switch s {
	case Active, Archived:
		return true
	}
	return false
}

// OrDefault returns s, or Active when s is empty.
func OrDefault(s string) string {
	if s == "" {
		return Active
	}
	return s
}
