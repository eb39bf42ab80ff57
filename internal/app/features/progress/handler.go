// internal/app/features/progress/handler.go
package progress

import (
	progressstore "github.com/dalemusser/roadmaphub/internal/app/store/progress"
	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the per-user progress endpoints.
type Handler struct {
	Progress *progressstore.Store
	Roadmaps *roadmapstore.Store
	Audit    *auditlog.Logger
	Errs     *apierr.Writer
	Log      *zap.Logger
}

// NewHandler constructs a progress Handler bound to the given database.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, errs *apierr.Writer, logger *zap.Logger) *Handler {
	return &Handler{
		Progress: progressstore.New(db),
		Roadmaps: roadmapstore.New(db),
		Audit:    audit,
		Errs:     errs,
		Log:      logger,
	}
}
