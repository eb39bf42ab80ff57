// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
)

// UserCtx returns the resolved user's role (lowercased), subject, and a found
// flag. Without a user it returns "visitor", "", false.
func UserCtx(r *http.Request) (role, subject string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u == nil {
		return "visitor", "", false
	}
	return strings.ToLower(u.Role), u.Subject, true
}

// HasAnyRole reports whether the request's user holds one of roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, ok := UserCtx(r)
	return ok && Authorize(role, roles...)
}

// Authorize reports whether callerRole is one of allowed.
// Comparison ignores case and surrounding whitespace. An empty allowed list
// authorizes nobody.
func Authorize(callerRole string, allowed ...string) bool {
	role := strings.ToLower(strings.TrimSpace(callerRole))
	if role == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimSpace(a)) == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether role is the admin role.
func IsAdmin(role string) bool {
	return Authorize(role, Admins...)
}

// IsCreator reports whether subject created rm.
func IsCreator(subject string, rm models.Roadmap) bool {
	return subject != "" && rm.CreatedBy == subject
}

// CanModifyRoadmap reports whether the caller may update, archive, or
// restore rm: its creator or any admin.
func CanModifyRoadmap(subject, role string, rm models.Roadmap) bool {
	return IsCreator(subject, rm) || IsAdmin(role)
}

// CanViewRoadmap reports whether the caller may read the body of rm.
// Private roadmaps are readable only by their creator.
func CanViewRoadmap(subject string, rm models.Roadmap) bool {
	return rm.IsPublic() || IsCreator(subject, rm)
}
