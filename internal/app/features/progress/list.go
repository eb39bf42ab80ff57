package progress

import (
	"context"
	"errors"
	"net/http"

	progressstore "github.com/dalemusser/roadmaphub/internal/app/store/progress"
	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /: all of the caller's progress, most recently
// updated first, each joined with its roadmap.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	records, roadmaps, err := h.loadAll(ctx, u.Subject)
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to load progress", err))
		return
	}

	out := make([]progressView, 0, len(records))
	for _, p := range records {
		var rm *models.Roadmap
		if m, ok := roadmaps[p.RoadmapID]; ok {
			rm = &m
		}
		out = append(out, newView(p, rm))
	}
	apierr.WriteJSON(w, http.StatusOK, out)
}

// ServeStats handles GET /stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	records, roadmaps, err := h.loadAll(ctx, u.Subject)
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to load progress", err))
		return
	}
	apierr.WriteJSON(w, http.StatusOK, ComputeStats(records, roadmaps))
}

// ServeOne handles GET /roadmap/{roadmapID}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}
	rid, ok := h.roadmapParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Progress.Get(ctx, u.Subject, rid)
	if errors.Is(err, progressstore.ErrNotFound) {
		h.Errs.Error(w, r, apierr.NotFound("no progress for this roadmap"))
		return
	}
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to load progress", err))
		return
	}

	var rm *models.Roadmap
	m, err := h.Roadmaps.GetByIDUnscoped(ctx, rid)
	switch {
	case err == nil:
		if authz.CanViewRoadmap(u.Subject, m) {
			rm = &m
		}
	case !errors.Is(err, roadmapstore.ErrNotFound):
		h.Errs.Error(w, r, apierr.Internal("failed to load roadmap", err))
		return
	}
	apierr.WriteJSON(w, http.StatusOK, newView(p, rm))
}

// HandleDelete handles DELETE /roadmap/{roadmapID}: it resets the caller's
// progress on one roadmap.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}
	rid, ok := h.roadmapParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Progress.Delete(ctx, u.Subject, rid)
	if errors.Is(err, progressstore.ErrNotFound) {
		h.Errs.Error(w, r, apierr.NotFound("no progress for this roadmap"))
		return
	}
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to delete progress", err))
		return
	}

	h.Audit.ProgressReset(ctx, r, u.Subject, rid)
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "progress deleted"})
}

func (h *Handler) roadmapParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "roadmapID"))
	if err != nil {
		h.Errs.Error(w, r, apierr.BadID("roadmapID"))
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadAll returns the user's progress and every roadmap it references that
// the user may still read, archived ones included. Deleted roadmaps, and
// roadmaps made private by someone else, are absent from the map.
func (h *Handler) loadAll(ctx context.Context, subject string) ([]models.Progress, map[primitive.ObjectID]models.Roadmap, error) {
	records, err := h.Progress.ListByUser(ctx, subject)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(records))
	for _, p := range records {
		ids = append(ids, p.RoadmapID)
	}
	roadmaps, err := h.Roadmaps.GetManyUnscoped(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for id, rm := range roadmaps {
		if !authz.CanViewRoadmap(subject, rm) {
			delete(roadmaps, id)
		}
	}
	return records, roadmaps, nil
}
