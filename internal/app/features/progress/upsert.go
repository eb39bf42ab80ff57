package progress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleUpsert handles POST /: it replaces the caller's completed step set
// for one roadmap. The roadmap must be active and visible to the caller.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}

	var in upsertInput
	if err := apierr.DecodeJSON(w, r, &in); err != nil {
		h.Errs.Error(w, r, err)
		return
	}
	rid, err := primitive.ObjectIDFromHex(in.Roadmap)
	if err != nil {
		h.Errs.Error(w, r, apierr.BadID("roadmap"))
		return
	}
	if in.CompletedSteps == nil {
		h.Errs.Error(w, r, apierr.Validation("invalid progress", map[string]string{
			"completedSteps": "must be an array of step indices",
		}))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rm, err := h.Roadmaps.GetByID(ctx, rid)
	if errors.Is(err, roadmapstore.ErrNotFound) || (err == nil && !authz.CanViewRoadmap(u.Subject, rm)) {
		h.Errs.Error(w, r, apierr.NotFound("roadmap not found"))
		return
	}
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to load roadmap", err))
		return
	}

	steps, verr := normalizeSteps(*in.CompletedSteps, len(rm.Steps))
	if verr != nil {
		h.Errs.Error(w, r, verr)
		return
	}

	var completedAt *time.Time
	if len(rm.Steps) > 0 && len(steps) == len(rm.Steps) {
		now := time.Now().UTC()
		completedAt = &now
	}

	p, err := h.Progress.Upsert(ctx, u.Subject, rm.ID, steps, completedAt)
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to save progress", err))
		return
	}

	h.Log.Debug("progress saved",
		zap.String("subject", u.Subject),
		zap.String("roadmap_id", rm.ID.Hex()),
		zap.Int("completed", len(steps)))
	apierr.WriteJSON(w, http.StatusOK, newView(p, &rm))
}

// normalizeSteps de-duplicates and sorts indices, rejecting any outside
// [0, total).
func normalizeSteps(in []int, total int) ([]int, *apierr.Error) {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for i, idx := range in {
		if idx < 0 || idx >= total {
			return nil, apierr.Validation("invalid progress", map[string]string{
				fmt.Sprintf("completedSteps[%d]", i): fmt.Sprintf("must be between 0 and %d", total-1),
			})
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}
