// internal/app/features/roadmaps/handler.go
package roadmaps

import (
	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auditlog"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the roadmap endpoints: discovery, view, and the
// create/update/archive/restore lifecycle.
//
// It is constructed once at startup in bootstrap.
type Handler struct {
	Roadmaps *roadmapstore.Store
	Cursors  *paging.Cursors
	Audit    *auditlog.Logger
	Errs     *apierr.Writer
	Log      *zap.Logger

	// AuthorRoles may create roadmaps.
	AuthorRoles []string
}

// NewHandler constructs a Handler. When openAuthoring is set any signed-in
// user may create roadmaps; otherwise only editors and admins.
func NewHandler(db *mongo.Database, cursors *paging.Cursors, audit *auditlog.Logger, errs *apierr.Writer, openAuthoring bool, logger *zap.Logger) *Handler {
	authors := authz.Authors
	if openAuthoring {
		authors = authz.AnyRole
	}
	return &Handler{
		Roadmaps:    roadmapstore.New(db),
		Cursors:     cursors,
		Audit:       audit,
		Errs:        errs,
		Log:         logger,
		AuthorRoles: authors,
	}
}
