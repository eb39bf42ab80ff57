package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given subject and role.
func (f *Fixtures) CreateUser(ctx context.Context, subject, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Subject:   subject,
		Email:     subject + "@example.com",
		Name:      "User " + subject,
		NameCI:    text.Fold("User " + subject),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("CreateUser(%s): %v", subject, err)
	}
	return u
}

// RoadmapOpt adjusts a fixture roadmap before insert.
type RoadmapOpt func(*models.Roadmap)

func Private() RoadmapOpt {
	return func(r *models.Roadmap) { r.Visibility = models.VisibilityPrivate }
}

func Archived() RoadmapOpt {
	return func(r *models.Roadmap) { r.Status = "archived" }
}

func InCategory(c string) RoadmapOpt {
	return func(r *models.Roadmap) {
		r.Category = c
		r.CategoryCI = text.Fold(c)
	}
}

func WithSteps(n int) RoadmapOpt {
	return func(r *models.Roadmap) {
		r.Steps = make([]models.Step, n)
		for i := range r.Steps {
			r.Steps[i] = models.Step{Title: "Step " + string(rune('A'+i%26))}
		}
	}
}

func WithTags(tags ...string) RoadmapOpt {
	return func(r *models.Roadmap) { r.Tags = tags }
}

// CreateRoadmap inserts a public, active, two-step roadmap owned by creator.
func (f *Fixtures) CreateRoadmap(ctx context.Context, title, creator string, opts ...RoadmapOpt) models.Roadmap {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Roadmap{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "About " + title,
		Category:    "Backend",
		CategoryCI:  text.Fold("Backend"),
		Steps: []models.Step{
			{Title: "First", Resources: []string{"https://example.com/1"}},
			{Title: "Second"},
		},
		CreatedBy:  creator,
		Visibility: models.VisibilityPublic,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, o := range opts {
		o(&r)
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	for i := range r.Steps {
		if r.Steps[i].Resources == nil {
			r.Steps[i].Resources = []string{}
		}
	}
	if _, err := f.db.Collection("roadmaps").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("CreateRoadmap(%s): %v", title, err)
	}
	return r
}

// CreateProgress inserts a progress record directly.
func (f *Fixtures) CreateProgress(ctx context.Context, subject string, roadmapID primitive.ObjectID, steps ...int) models.Progress {
	f.t.Helper()

	if steps == nil {
		steps = []int{}
	}
	now := time.Now().UTC()
	p := models.Progress{
		ID:             primitive.NewObjectID(),
		User:           subject,
		RoadmapID:      roadmapID,
		CompletedSteps: steps,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("progress").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("CreateProgress(%s): %v", subject, err)
	}
	return p
}

// AuthUser converts a stored user into the context form handlers expect.
func AuthUser(u models.User) *auth.User {
	return &auth.User{
		ID:      u.ID.Hex(),
		Subject: u.Subject,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
	}
}
