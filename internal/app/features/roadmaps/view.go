package roadmaps

import (
	"context"
	"errors"
	"net/http"

	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/status"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// loadRoadmap parses {id} and loads the roadmap regardless of status.
// It writes the error response and returns false on failure.
func (h *Handler) loadRoadmap(w http.ResponseWriter, r *http.Request) (models.Roadmap, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.Errs.Error(w, r, apierr.BadID("id"))
		return models.Roadmap{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rm, err := h.Roadmaps.GetByIDUnscoped(ctx, id)
	if errors.Is(err, roadmapstore.ErrNotFound) {
		h.Errs.Error(w, r, apierr.NotFound("roadmap not found"))
		return models.Roadmap{}, false
	}
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to load roadmap", err))
		return models.Roadmap{}, false
	}
	return rm, true
}

// ServeView handles GET /{id}.
//
//   - private and the caller is not its creator: 403, even for admins
//   - archived: 404 unless the caller is its creator or an admin
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.loadRoadmap(w, r)
	if !ok {
		return
	}

	role, subject, _ := authz.UserCtx(r)
	if !authz.CanViewRoadmap(subject, rm) {
		h.Errs.Error(w, r, apierr.Forbidden("this roadmap is private"))
		return
	}
	if rm.Status != status.Active && !authz.CanModifyRoadmap(subject, role, rm) {
		h.Errs.Error(w, r, apierr.NotFound("roadmap not found"))
		return
	}

	apierr.WriteJSON(w, http.StatusOK, rm)
}
