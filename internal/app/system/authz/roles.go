package authz

import "strings"

// Application roles. A user's role is set once, at creation.
const (
	RoleLearner = "learner"
	RoleEditor  = "editor"
	RoleAdmin   = "admin"
)

// Role sets for route checks.
var (
	AnyRole = []string{RoleLearner, RoleEditor, RoleAdmin}
	Authors = []string{RoleEditor, RoleAdmin}
	Admins  = []string{RoleAdmin}
)

// DefaultRole is assigned when a user is provisioned implicitly.
const DefaultRole = RoleLearner

// ValidRoles lists every role, in privilege order.
func ValidRoles() []string {
	return []string{RoleLearner, RoleEditor, RoleAdmin}
}

// IsValidRole reports whether role names a known role (case-insensitive).
func IsValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleLearner, RoleEditor, RoleAdmin:
		return true
	}
	return false
}
