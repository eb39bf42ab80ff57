package account_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/roadmaphub/internal/app/features/account"
	userstore "github.com/dalemusser/roadmaphub/internal/app/store/users"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"github.com/dalemusser/roadmaphub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	router http.Handler
	users  *userstore.Store
	fx     *testutil.Fixtures
	db     *mongo.Database
}

func setup(t *testing.T, allowSelfAdmin bool) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	errs := apierr.NewWriter(zap.NewNop(), true)
	users := userstore.New(db)
	gate := &gates.Gate{Users: users, Errs: errs, Log: zap.NewNop()}
	h := account.NewHandler(db, nil, nil, errs, allowSelfAdmin, zap.NewNop())
	return &env{
		router: account.Routes(h, auth.NewAuthenticator(nil, auth.Options{}, errs, zap.NewNop()), gate),
		users:  users,
		fx:     testutil.NewFixtures(t, db),
		db:     db,
	}
}

func identityFor(subject string) auth.Identity {
	return auth.Identity{Subject: subject, Email: subject + "@example.com", Name: "Person " + subject}
}

func (e *env) register(t *testing.T, subject, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, "POST", "/register", map[string]string{"role": role})
	if subject != "" {
		req = auth.WithTestIdentity(req, identityFor(subject))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := setup(t, false)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	testutil.DecodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestRegister_CreateThenRepeat(t *testing.T) {
	e := setup(t, false)

	rec := e.register(t, "sub-1", "Editor")
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: status %d, body=%s", rec.Code, rec.Body.String())
	}
	var u models.User
	testutil.DecodeJSON(t, rec, &u)
	if u.Role != "editor" || u.Email != "sub-1@example.com" || u.Name != "Person sub-1" {
		t.Errorf("created user = %+v", u)
	}

	rec = e.register(t, "sub-1", "editor")
	if rec.Code != http.StatusOK {
		t.Fatalf("same-role register: status %d", rec.Code)
	}
	var again models.User
	testutil.DecodeJSON(t, rec, &again)
	if again.ID != u.ID || again.Role != "editor" {
		t.Errorf("repeat register returned %+v, want the original user", again)
	}

	rec = e.register(t, "sub-1", "learner")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("different-role register: status %d, want 403", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	stored, err := e.users.GetBySubject(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetBySubject failed: %v", err)
	}
	if stored.Role != "editor" {
		t.Errorf("role changed to %q", stored.Role)
	}
}

func TestRegister_ViewerAlias(t *testing.T) {
	e := setup(t, false)
	rec := e.register(t, "sub-v", "viewer")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var u models.User
	testutil.DecodeJSON(t, rec, &u)
	if u.Role != "learner" {
		t.Errorf("role = %q, want learner", u.Role)
	}
}

func TestRegister_Rejections(t *testing.T) {
	e := setup(t, false)

	tests := []struct {
		name     string
		subject  string
		role     string
		wantCode int
	}{
		{"no identity", "", "learner", http.StatusUnauthorized},
		{"unknown role", "sub-2", "superuser", http.StatusBadRequest},
		{"empty role", "sub-2", "", http.StatusBadRequest},
		{"self admin disabled", "sub-2", "admin", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.register(t, tt.subject, tt.role)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body=%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	rec := e.register(t, "sub-2", "superuser")
	var body struct {
		ValidRoles []string `json:"validRoles"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if len(body.ValidRoles) != 3 {
		t.Errorf("validRoles = %v", body.ValidRoles)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := e.users.GetBySubject(ctx, "sub-2"); err != userstore.ErrNotFound {
		t.Errorf("rejected registration wrote a user: err=%v", err)
	}
}

func TestRegister_SelfAdminAllowed(t *testing.T) {
	e := setup(t, true)
	if rec := e.register(t, "boss", "admin"); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestRegister_ExistingAdminWithoutSelfAdmin(t *testing.T) {
	e := setup(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fx.CreateUser(ctx, "root", "admin")

	rec := e.register(t, "root", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body=%s)", rec.Code, rec.Body.String())
	}
	var got models.User
	testutil.DecodeJSON(t, rec, &got)
	if got.ID != admin.ID || got.Role != "admin" {
		t.Errorf("register returned %+v, want the existing admin", got)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	e := setup(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := e.users.Create(ctx, models.User{Subject: "other", Email: "sub-3@example.com", Name: "Other"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec := e.register(t, "sub-3", "learner"); rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func (e *env) profileReq(t *testing.T, method string, body any, u *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.JSONRequest(t, method, "/profile", body)
	} else {
		req = httptest.NewRequest(method, "/profile", nil)
	}
	if u != nil {
		req = auth.WithTestUser(req, u)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestProfile_Get(t *testing.T) {
	e := setup(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.AuthUser(e.fx.CreateUser(ctx, "learner-1", "learner"))

	rec := e.profileReq(t, "GET", nil, u)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got models.User
	testutil.DecodeJSON(t, rec, &got)
	if got.Subject != "learner-1" || got.Role != "learner" {
		t.Errorf("profile = %+v", got)
	}

	if rec := e.profileReq(t, "GET", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status %d, want 401", rec.Code)
	}
}

func TestProfile_Update(t *testing.T) {
	e := setup(t, false)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.AuthUser(e.fx.CreateUser(ctx, "learner-1", "learner"))
	e.fx.CreateUser(ctx, "learner-2", "learner")

	rec := e.profileReq(t, "PUT", map[string]string{"name": "  Ada   Lovelace ", "email": "ADA@Example.com"}, u)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	var got models.User
	testutil.DecodeJSON(t, rec, &got)
	if got.Name != "Ada Lovelace" || got.Email != "ada@example.com" || got.Role != "learner" {
		t.Errorf("updated = %+v", got)
	}

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{"role change", map[string]any{"name": "X", "role": "admin"}, http.StatusForbidden},
		{"bad email", map[string]any{"email": "not-an-email"}, http.StatusBadRequest},
		{"blank name", map[string]any{"name": "   "}, http.StatusBadRequest},
		{"email taken", map[string]any{"email": "learner-2@example.com"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.profileReq(t, "PUT", tt.body, u)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body=%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	stored, err := e.users.GetBySubject(ctx, "learner-1")
	if err != nil {
		t.Fatalf("GetBySubject failed: %v", err)
	}
	if stored.Role != "learner" || stored.Email != "ada@example.com" {
		t.Errorf("rejected updates changed the record: %+v", stored)
	}
}

func TestProfile_UnregisteredThenRegister(t *testing.T) {
	e := setup(t, false)

	getProfile := func() *httptest.ResponseRecorder {
		req := auth.WithTestIdentity(httptest.NewRequest("GET", "/profile", nil), identityFor("newcomer"))
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	rec := getProfile()
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unregistered profile: status %d, want 404", rec.Code)
	}
	if kind := testutil.ErrorKind(t, rec); kind != string(apierr.KindNotFound) {
		t.Errorf("error kind = %q", kind)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := e.users.GetBySubject(ctx, "newcomer"); err != userstore.ErrNotFound {
		t.Fatalf("profile read provisioned a user: err=%v", err)
	}

	if rec := e.register(t, "newcomer", "editor"); rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, want 201 (body=%s)", rec.Code, rec.Body.String())
	}

	rec = getProfile()
	if rec.Code != http.StatusOK {
		t.Fatalf("registered profile: status %d", rec.Code)
	}
	var got models.User
	testutil.DecodeJSON(t, rec, &got)
	if got.Role != "editor" {
		t.Errorf("role = %q, want editor", got.Role)
	}
}
