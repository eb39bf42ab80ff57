// internal/app/features/account/handler.go
package account

import (
	userstore "github.com/dalemusser/roadmaphub/internal/app/store/users"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auditlog"
	"github.com/dalemusser/roadmaphub/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns registration and the caller's own profile.
type Handler struct {
	Users    *userstore.Store
	Profiles *identity.Resolver
	Audit    *auditlog.Logger
	Errs     *apierr.Writer
	Log      *zap.Logger

	// AllowSelfAdmin lets callers register themselves as admin.
	AllowSelfAdmin bool
}

// NewHandler constructs an account Handler bound to the given database.
func NewHandler(db *mongo.Database, profiles *identity.Resolver, audit *auditlog.Logger, errs *apierr.Writer, allowSelfAdmin bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:          userstore.New(db),
		Profiles:       profiles,
		Audit:          audit,
		Errs:           errs,
		Log:            logger,
		AllowSelfAdmin: allowSelfAdmin,
	}
}
