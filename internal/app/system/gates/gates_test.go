package gates_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	userstore "github.com/dalemusser/roadmaphub/internal/app/store/users"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/identity"
	"github.com/dalemusser/roadmaphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type failingLookup struct{}

func (failingLookup) Lookup(context.Context, string) (identity.Profile, error) {
	return identity.Profile{}, errors.New("provider down")
}

type env struct {
	gate  *gates.Gate
	users *userstore.Store
	db    *mongo.Database
}

func newGate(t *testing.T, lookup identity.ProfileLookup) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	return env{
		gate: &gates.Gate{
			Users:    users,
			Profiles: identity.NewResolver(lookup),
			Errs:     apierr.NewWriter(zap.NewNop(), true),
			Log:      zap.NewNop(),
		},
		users: users,
		db:    db,
	}
}

// captureUser records the user the gate attached.
func captureUser(got **auth.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.CurrentUser(r)
		*got = u
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestLoadUser_NoIdentity(t *testing.T) {
	g := newGate(t, nil).gate
	var got *auth.User

	rec := httptest.NewRecorder()
	g.LoadUser(captureUser(&got)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if kind := testutil.ErrorKind(t, rec); kind != "authentication" {
		t.Errorf("error kind = %q, want authentication", kind)
	}
}

func TestLoadUser_ProvisionsOnce(t *testing.T) {
	e := newGate(t, nil)
	g := e.gate
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := auth.Identity{Subject: "auth0|new", Email: "New@Example.com", Name: "New Person"}
	for i := 0; i < 2; i++ {
		var got *auth.User
		rec := httptest.NewRecorder()
		req := auth.WithTestIdentity(httptest.NewRequest("GET", "/", nil), id)
		g.LoadUser(captureUser(&got)).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("call %d: status = %d, body=%s", i, rec.Code, rec.Body.String())
		}
		if got == nil || got.Subject != "auth0|new" || got.Role != authz.RoleLearner {
			t.Fatalf("call %d: attached user %+v", i, got)
		}
		if got.Email != "new@example.com" {
			t.Errorf("call %d: Email = %q", i, got.Email)
		}
	}

	n, err := e.db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestLoadUser_ExistingUserKeepsRole(t *testing.T) {
	e := newGate(t, nil)
	g := e.gate
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, e.db).CreateUser(ctx, "ed", "editor")

	var got *auth.User
	rec := httptest.NewRecorder()
	req := auth.WithTestIdentity(httptest.NewRequest("GET", "/", nil), auth.Identity{Subject: "ed"})
	g.LoadUser(captureUser(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.Role != "editor" {
		t.Errorf("Role = %q, want editor", got.Role)
	}
}

func TestLoadUser_ProfileLookupFails(t *testing.T) {
	e := newGate(t, failingLookup{})
	g := e.gate
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var got *auth.User
	rec := httptest.NewRecorder()
	// No email claim and a token present: the provider is consulted.
	req := auth.WithTestIdentity(httptest.NewRequest("GET", "/", nil), auth.Identity{Subject: "s", Token: "tok"})
	g.LoadUser(captureUser(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if _, err := e.users.GetBySubject(ctx, "s"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected no user written, got %v", err)
	}
}

func TestLoadUser_EmailConflict(t *testing.T) {
	e := newGate(t, nil)
	g := e.gate
	ctx, cancel := testutil.TestContext()
	defer cancel()
	// Fixture email is owner@example.com.
	testutil.NewFixtures(t, e.db).CreateUser(ctx, "owner", "learner")

	var got *auth.User
	rec := httptest.NewRecorder()
	req := auth.WithTestIdentity(httptest.NewRequest("GET", "/", nil),
		auth.Identity{Subject: "other", Email: "owner@example.com", Name: "Other"})
	g.LoadUser(captureUser(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLoadUserIfPresent_Anonymous(t *testing.T) {
	g := newGate(t, nil).gate
	var got *auth.User

	rec := httptest.NewRecorder()
	g.LoadUserIfPresent(captureUser(&got)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want pass-through", rec.Code)
	}
	if got != nil {
		t.Errorf("expected no user, got %+v", got)
	}
}

func TestLookupOnlyGates(t *testing.T) {
	e := newGate(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, e.db).CreateUser(ctx, "ed", "editor")

	tests := []struct {
		name     string
		mw       func(http.Handler) http.Handler
		subject  string
		wantCode int
		wantUser string
	}{
		{"if present: known", e.gate.LoadUserIfPresent, "ed", http.StatusNoContent, "ed"},
		{"if present: unknown passes anonymously", e.gate.LoadUserIfPresent, "stranger", http.StatusNoContent, ""},
		{"registered: known", e.gate.LoadRegistered, "ed", http.StatusNoContent, "ed"},
		{"registered: unknown is 404", e.gate.LoadRegistered, "stranger", http.StatusNotFound, ""},
		{"registered: anonymous is 401", e.gate.LoadRegistered, "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.User
			req := httptest.NewRequest("GET", "/", nil)
			if tt.subject != "" {
				req = auth.WithTestIdentity(req, auth.Identity{Subject: tt.subject})
			}
			rec := httptest.NewRecorder()
			tt.mw(captureUser(&got)).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			switch {
			case tt.wantUser == "" && got != nil:
				t.Errorf("expected no user, got %+v", got)
			case tt.wantUser != "" && (got == nil || got.Subject != tt.wantUser):
				t.Errorf("attached user %+v, want %s", got, tt.wantUser)
			}
		})
	}

	n, err := e.db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("lookup-only gates provisioned users: count = %d, want 1", n)
	}
}

func TestRequireRole(t *testing.T) {
	errs := apierr.NewWriter(zap.NewNop(), false)

	tests := []struct {
		name     string
		user     *auth.User
		roles    []string
		wantOK   bool
		wantCode int
	}{
		{"no user", nil, authz.Authors, false, http.StatusUnauthorized},
		{"learner denied", &auth.User{Subject: "l", Role: "learner"}, authz.Authors, false, http.StatusForbidden},
		{"editor allowed", &auth.User{Subject: "e", Role: "editor"}, authz.Authors, true, http.StatusOK},
		{"admin allowed", &auth.User{Subject: "a", Role: "admin"}, authz.Authors, true, http.StatusOK},
		{"editor not admin", &auth.User{Subject: "e", Role: "editor"}, authz.Admins, false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()

			u, ok := gates.RequireRole(rec, req, errs, tt.roles...)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && u.Subject != tt.user.Subject {
				t.Errorf("returned user %+v", u)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}
