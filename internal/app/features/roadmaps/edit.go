package roadmaps

import (
	"context"
	"errors"
	"net/http"

	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/status"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /. The caller must hold an author role.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, h.AuthorRoles...)
	if !ok {
		return
	}

	var in roadmapInput
	if err := apierr.DecodeJSON(w, r, &in); err != nil {
		h.Errs.Error(w, r, err)
		return
	}
	upd, verr := in.clean()
	if verr != nil {
		h.Errs.Error(w, r, verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rm, err := h.Roadmaps.Create(ctx, models.Roadmap{
		Title:         upd.Title,
		Description:   upd.Description,
		Category:      upd.Category,
		Tags:          upd.Tags,
		Steps:         upd.Steps,
		Visibility:    upd.Visibility,
		CreatedBy:     u.Subject,
		CreatedByName: u.Name,
	})
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to create roadmap", err))
		return
	}

	h.Log.Info("roadmap created", zap.String("roadmap_id", rm.ID.Hex()), zap.String("subject", u.Subject))
	h.Audit.RoadmapCreated(ctx, r, u.Subject, rm.ID, rm.Title)
	apierr.WriteJSON(w, http.StatusCreated, rm)
}

// HandleUpdate handles PUT /{id}: a full replace of the mutable fields by
// the creator or an admin.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}
	rm, ok := h.loadRoadmap(w, r)
	if !ok {
		return
	}
	if !authz.CanModifyRoadmap(u.Subject, u.Role, rm) {
		h.Errs.Error(w, r, apierr.Forbidden("only the creator or an admin can edit this roadmap"))
		return
	}

	var in roadmapInput
	if err := apierr.DecodeJSON(w, r, &in); err != nil {
		h.Errs.Error(w, r, err)
		return
	}
	upd, verr := in.clean()
	if verr != nil {
		h.Errs.Error(w, r, verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Roadmaps.Replace(ctx, rm.ID, upd)
	if errors.Is(err, roadmapstore.ErrNotFound) {
		h.Errs.Error(w, r, apierr.NotFound("roadmap not found"))
		return
	}
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to update roadmap", err))
		return
	}

	h.Audit.RoadmapUpdated(ctx, r, u.Subject, updated.ID, updated.Title)
	apierr.WriteJSON(w, http.StatusOK, updated)
}

// HandleArchive handles DELETE /{id}. The roadmap is kept with status
// archived; repeating the call is harmless.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, status.Archived)
}

// HandleRestore handles POST /{id}/restore.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, status.Active)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, st string) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}
	rm, ok := h.loadRoadmap(w, r)
	if !ok {
		return
	}
	if !authz.CanModifyRoadmap(u.Subject, u.Role, rm) {
		h.Errs.Error(w, r, apierr.Forbidden("only the creator or an admin can change this roadmap"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Roadmaps.SetStatus(ctx, rm.ID, st)
	if errors.Is(err, roadmapstore.ErrNotFound) {
		h.Errs.Error(w, r, apierr.NotFound("roadmap not found"))
		return
	}
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to update roadmap status", err))
		return
	}

	if rm.Status != st {
		if st == status.Archived {
			h.Audit.RoadmapArchived(ctx, r, u.Subject, rm.ID)
		} else {
			h.Audit.RoadmapRestored(ctx, r, u.Subject, rm.ID)
		}
	}
	apierr.WriteJSON(w, http.StatusOK, updated)
}
