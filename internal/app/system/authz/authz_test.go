package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{"learner in any", "learner", AnyRole, true},
		{"learner not author", "learner", Authors, false},
		{"editor is author", "editor", Authors, true},
		{"admin is author", "admin", Authors, true},
		{"editor not admin", "editor", Admins, false},
		{"case insensitive", " ADMIN ", Admins, true},
		{"empty role", "", AnyRole, false},
		{"unknown role", "owner", AnyRole, false},
		{"empty allowed", "admin", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.role, tt.allowed...); got != tt.want {
				t.Errorf("Authorize(%q, %v) = %v, want %v", tt.role, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles() {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false", r)
		}
	}
	for _, r := range []string{"", "viewer", "superadmin"} {
		if IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = true", r)
		}
	}
}

func TestRoadmapPermissions(t *testing.T) {
	pub := models.Roadmap{CreatedBy: "alice", Visibility: models.VisibilityPublic}
	priv := models.Roadmap{CreatedBy: "alice", Visibility: models.VisibilityPrivate}

	tests := []struct {
		name       string
		subject    string
		role       string
		rm         models.Roadmap
		wantView   bool
		wantModify bool
	}{
		{"creator public", "alice", "editor", pub, true, true},
		{"creator private", "alice", "editor", priv, true, true},
		{"other learner public", "bob", "learner", pub, true, false},
		{"other learner private", "bob", "learner", priv, false, false},
		{"admin public", "root", "admin", pub, true, true},
		{"admin private", "root", "admin", priv, false, true},
		{"anonymous public", "", "", pub, true, false},
		{"anonymous private", "", "", priv, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewRoadmap(tt.subject, tt.rm); got != tt.wantView {
				t.Errorf("CanViewRoadmap: got %v, want %v", got, tt.wantView)
			}
			if got := CanModifyRoadmap(tt.subject, tt.role, tt.rm); got != tt.wantModify {
				t.Errorf("CanModifyRoadmap: got %v, want %v", got, tt.wantModify)
			}
		})
	}
}

func TestIsCreator_EmptySubject(t *testing.T) {
	if IsCreator("", models.Roadmap{CreatedBy: ""}) {
		t.Error("empty subject must never match")
	}
}

func TestUserCtx(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if role, sub, ok := UserCtx(req); ok || role != "visitor" || sub != "" {
		t.Errorf("anonymous: got (%q, %q, %v)", role, sub, ok)
	}

	req = auth.WithTestUser(req, &auth.User{Subject: "alice", Role: "Editor"})
	role, sub, ok := UserCtx(req)
	if !ok || role != "editor" || sub != "alice" {
		t.Errorf("signed in: got (%q, %q, %v)", role, sub, ok)
	}
	if !HasAnyRole(req, Authors...) {
		t.Error("editor should satisfy Authors")
	}
	if HasAnyRole(req, Admins...) {
		t.Error("editor should not satisfy Admins")
	}
}
