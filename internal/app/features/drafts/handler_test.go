package drafts_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/features/drafts"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/drafting"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/ratelimit"
	"github.com/dalemusser/roadmaphub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

const goodDraft = "```json\n" + `{
  "title": "Go Backend",
  "description": "Learn <b>Go</b>",
  "category": "Backend",
  "tags": ["go", "Go", "api"],
  "steps": [
    {"title": "Syntax", "description": "Basics", "resources": ["https://go.dev/tour", "javascript:alert(1)"]},
    {"title": "", "description": "dropped"},
    {"title": "HTTP", "resources": []}
  ]
}` + "\n```"

var (
	editor  = &auth.User{Subject: "editor-1", Name: "Ed", Role: "editor"}
	learner = &auth.User{Subject: "learner-1", Name: "Lee", Role: "learner"}
)

func newRouter(gen drafting.Generator, limiter ratelimit.Limiter, openAuthoring bool) http.Handler {
	errs := apierr.NewWriter(zap.NewNop(), true)
	gate := &gates.Gate{Errs: errs, Log: zap.NewNop()}
	return drafts.Routes(drafts.NewHandler(gen, limiter, errs, openAuthoring, zap.NewNop()), gate)
}

func post(t *testing.T, router http.Handler, u *auth.User, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, "POST", "/roadmap", body)
	if u != nil {
		req = auth.WithTestUser(req, u)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDraft_Success(t *testing.T) {
	gen := &fakeGenerator{out: goodDraft}
	router := newRouter(gen, nil, false)

	rec := post(t, router, editor, map[string]string{"topic": " Go  backend ", "level": "beginner"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var d drafting.Draft
	testutil.DecodeJSON(t, rec, &d)
	assert.Equal(t, "Go Backend", d.Title)
	assert.Equal(t, "Learn Go", d.Description)
	assert.Equal(t, []string{"go", "api"}, d.Tags)
	require.Len(t, d.Steps, 2)
	assert.Equal(t, []string{"https://go.dev/tour"}, d.Steps[0].Resources)
	assert.Equal(t, "HTTP", d.Steps[1].Title)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Topic: Go backend")
	assert.Contains(t, gen.prompts[0], "beginner")
}

func TestDraft_ParseFailureReturnsRaw(t *testing.T) {
	router := newRouter(&fakeGenerator{out: "Sorry, I can't help with that."}, nil, false)

	rec := post(t, router, editor, map[string]string{"topic": "Go"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error string `json:"error"`
		Raw   string `json:"raw"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "parse_failed", body.Error)
	assert.Equal(t, "Sorry, I can't help with that.", body.Raw)
}

func TestDraft_GeneratorError(t *testing.T) {
	router := newRouter(&fakeGenerator{err: errors.New("quota exceeded")}, nil, false)
	rec := post(t, router, editor, map[string]string{"topic": "Go"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDraft_NotConfigured(t *testing.T) {
	router := newRouter(nil, nil, false)
	rec := post(t, router, editor, map[string]string{"topic": "Go"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", testutil.ErrorKind(t, rec))
}

func TestDraft_Rejections(t *testing.T) {
	gen := &fakeGenerator{out: goodDraft}
	router := newRouter(gen, nil, false)

	tests := []struct {
		name     string
		user     *auth.User
		body     any
		wantCode int
	}{
		{"anonymous", nil, map[string]string{"topic": "Go"}, http.StatusUnauthorized},
		{"learner", learner, map[string]string{"topic": "Go"}, http.StatusForbidden},
		{"missing topic", editor, map[string]string{"level": "expert"}, http.StatusBadRequest},
		{"topic too long", editor, map[string]string{"topic": strings.Repeat("x", 201)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, router, tt.user, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, gen.prompts, "rejected requests must not reach the model")
}

func TestDraft_OpenAuthoringAllowsLearners(t *testing.T) {
	router := newRouter(&fakeGenerator{out: goodDraft}, nil, true)
	rec := post(t, router, learner, map[string]string{"topic": "Go"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDraft_RateLimitedPerSubject(t *testing.T) {
	limiter := ratelimit.NewMemory(2, time.Minute)
	defer limiter.Close()
	router := newRouter(&fakeGenerator{out: goodDraft}, limiter, false)

	for i := 0; i < 2; i++ {
		rec := post(t, router, editor, map[string]string{"topic": "Go"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := post(t, router, editor, map[string]string{"topic": "Go"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", testutil.ErrorKind(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other := &auth.User{Subject: "editor-2", Role: "editor"}
	rec = post(t, router, other, map[string]string{"topic": "Go"})
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per subject")
}
