// internal/app/features/drafts/handler.go
package drafts

import (
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/drafting"
	"github.com/dalemusser/roadmaphub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves model-generated roadmap drafts.
type Handler struct {
	// Generator is nil when no model is configured; requests then get 503.
	Generator drafting.Generator
	Limiter   ratelimit.Limiter
	Errs      *apierr.Writer
	Log       *zap.Logger

	AuthorRoles []string
}

// NewHandler constructs a drafts Handler. Pass a nil gen (not a typed nil)
// to disable drafting.
func NewHandler(gen drafting.Generator, limiter ratelimit.Limiter, errs *apierr.Writer, openAuthoring bool, logger *zap.Logger) *Handler {
	roles := authz.Authors
	if openAuthoring {
		roles = authz.AnyRole
	}
	return &Handler{
		Generator:   gen,
		Limiter:     limiter,
		Errs:        errs,
		Log:         logger,
		AuthorRoles: roles,
	}
}
