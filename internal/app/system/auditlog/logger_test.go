package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/roadmaphub/internal/app/store/audit"
	"github.com/dalemusser/roadmaphub/internal/app/system/auditlog"
	"github.com/dalemusser/roadmaphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.UserProvisioned(ctx, req, "s", "learner")
	logger.RoadmapArchived(ctx, req, "s", primitive.NewObjectID())
}

func TestLogger_LogOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Account: "log", Content: "off"})
	req := httptest.NewRequest("POST", "/api/auth/register", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("User-Agent", "TestBrowser/1.0")

	logger.UserRegistered(ctx, req, "auth0|1", "editor", true)
	logger.RoadmapCreated(ctx, req, "auth0|1", primitive.NewObjectID(), "Go")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry (content is off), got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventUserRegistered {
		t.Errorf("event_type = %v", fields["event_type"])
	}
	if fields["ip"] != "203.0.113.9" {
		t.Errorf("ip = %v, want 203.0.113.9", fields["ip"])
	}
	if fields["detail_outcome"] != "created" {
		t.Errorf("detail_outcome = %v, want created", fields["detail_outcome"])
	}
}

func TestLogger_FailureLogsAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Account: "log"})
	logger.RegisterRejected(ctx, httptest.NewRequest("POST", "/", nil), "s", "admin", "self-admin disabled")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Account: "off", Content: "off"})
	logger.UserProvisioned(ctx, nil, "s1", "learner")
	logger.ProgressReset(ctx, nil, "s1", primitive.NewObjectID())

	n, err := store.CountByFilter(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no events when config is 'off', got %d", n)
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Account: "db", Content: "db"})
	rm := primitive.NewObjectID()
	logger.RoadmapArchived(ctx, httptest.NewRequest("DELETE", "/", nil), "editor-1", rm)
	logger.RoadmapRestored(ctx, nil, "editor-1", rm)

	events, err := store.GetByRoadmap(ctx, rm, 10)
	if err != nil {
		t.Fatalf("GetByRoadmap failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Category != audit.CategoryContent || e.Subject != "editor-1" || !e.Success {
			t.Errorf("unexpected event %+v", e)
		}
	}
}
