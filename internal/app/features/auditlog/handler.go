// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/roadmaphub/internal/app/store/audit"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events *audit.Store
	Errs   *apierr.Writer
	Log    *zap.Logger
}

// NewHandler constructs an audit log feature handler bound to the given
// Mongo database and logger.
func NewHandler(db *mongo.Database, errs *apierr.Writer, logger *zap.Logger) *Handler {
	return &Handler{
		Events: audit.New(db),
		Errs:   errs,
		Log:    logger,
	}
}
