// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/roadmaphub/internal/app/store/audit"
	"github.com/dalemusser/roadmaphub/internal/app/system/ratelimit"
	"github.com/dalemusser/roadmaphub/internal/app/system/requestid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Account controls logging for provisioning, registration and profile events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Account string
	// Content controls logging for roadmap and progress changes.
	Content string
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via audit.Store) and/or structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// fromRequest fills the request context fields of an event.
func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r == nil {
		return e
	}
	e.IP = ratelimit.ClientIP(r)
	e.UserAgent = r.UserAgent()
	e.RequestID = requestid.FromContext(r.Context())
	return e
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.ActorSubject != "" {
		fields = append(fields, zap.String("actor_subject", event.ActorSubject))
	}
	if event.RoadmapID != nil {
		fields = append(fields, zap.String("roadmap_id", event.RoadmapID.Hex()))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAccount:
		setting = l.config.Account
	case audit.CategoryContent:
		setting = l.config.Content
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if (setting == "all" || setting == "log") && l.zapLog != nil {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Account Events ---

// UserProvisioned logs the automatic creation of a user on first request.
func (l *Logger) UserProvisioned(ctx context.Context, r *http.Request, subject, role string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventUserProvisioned,
		Subject:   subject,
		Success:   true,
		Details:   map[string]string{"role": role},
	}))
}

// UserRegistered logs an explicit registration. created is false when the
// user already existed with the requested role.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, subject, role string, created bool) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventUserRegistered,
		Subject:   subject,
		Success:   true,
		Details:   map[string]string{"role": role, "outcome": outcome},
	}))
}

// RegisterRejected logs a refused registration attempt.
func (l *Logger) RegisterRejected(ctx context.Context, r *http.Request, subject, role, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAccount,
		EventType:     audit.EventRegisterRejected,
		Subject:       subject,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"role": role},
	}))
}

// ProfileUpdated logs a change to a user's own name or email.
func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, subject string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventProfileUpdated,
		Subject:   subject,
		Success:   true,
	}))
}

// --- Content Events ---

func (l *Logger) roadmapEvent(ctx context.Context, r *http.Request, eventType, actor string, roadmapID primitive.ObjectID, details map[string]string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryContent,
		EventType: eventType,
		Subject:   actor,
		RoadmapID: &roadmapID,
		Success:   true,
		Details:   details,
	}))
}

// RoadmapCreated logs a new roadmap.
func (l *Logger) RoadmapCreated(ctx context.Context, r *http.Request, actor string, roadmapID primitive.ObjectID, title string) {
	l.roadmapEvent(ctx, r, audit.EventRoadmapCreated, actor, roadmapID, map[string]string{"title": title})
}

// RoadmapUpdated logs a roadmap edit.
func (l *Logger) RoadmapUpdated(ctx context.Context, r *http.Request, actor string, roadmapID primitive.ObjectID, title string) {
	l.roadmapEvent(ctx, r, audit.EventRoadmapUpdated, actor, roadmapID, map[string]string{"title": title})
}

// RoadmapArchived logs a soft delete.
func (l *Logger) RoadmapArchived(ctx context.Context, r *http.Request, actor string, roadmapID primitive.ObjectID) {
	l.roadmapEvent(ctx, r, audit.EventRoadmapArchived, actor, roadmapID, nil)
}

// RoadmapRestored logs an un-archive.
func (l *Logger) RoadmapRestored(ctx context.Context, r *http.Request, actor string, roadmapID primitive.ObjectID) {
	l.roadmapEvent(ctx, r, audit.EventRoadmapRestored, actor, roadmapID, nil)
}

// ProgressReset logs a user deleting their progress on a roadmap.
func (l *Logger) ProgressReset(ctx context.Context, r *http.Request, subject string, roadmapID primitive.ObjectID) {
	l.roadmapEvent(ctx, r, audit.EventProgressReset, subject, roadmapID, nil)
}
