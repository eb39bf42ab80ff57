package roadmaps

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/paging"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /.
// Anonymous callers see active public roadmaps; a signed-in caller also sees
// their own private ones. Optional filters: category, q, tag.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, subject, _ := authz.UserCtx(r)
	h.list(w, r, roadmapstore.ListQuery{
		Viewer:   subject,
		Category: query.Search(r, "category"),
		Search:   query.Search(r, "q"),
		Tag:      query.Search(r, "tag"),
	})
}

// ServeSearch handles GET /search?q=. Results are active and public.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")
	if q == "" {
		h.Errs.Error(w, r, apierr.Validation("search term is required", map[string]string{"q": "is required"}))
		return
	}
	h.list(w, r, roadmapstore.ListQuery{Search: q})
}

// ServeCategory handles GET /category/{category}. Results are active and
// public, matched by case-insensitive substring.
func (h *Handler) ServeCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		h.Errs.Error(w, r, apierr.Validation("category is required", map[string]string{"category": "is required"}))
		return
	}
	h.list(w, r, roadmapstore.ListQuery{Category: category})
}

// ServeMine handles GET /mine: the caller's own roadmaps, any visibility.
// ?include_archived=true adds archived ones.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		h.Errs.Error(w, r, apierr.Unauthenticated("authentication required"))
		return
	}
	includeArchived, _ := strconv.ParseBool(query.Get(r, "include_archived"))
	h.list(w, r, roadmapstore.ListQuery{
		CreatedBy:       u.Subject,
		IncludeArchived: includeArchived,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, q roadmapstore.ListQuery) {
	cfg := h.Cursors.FromRequest(r)
	if cfg.Invalid {
		h.Errs.Error(w, r, apierr.Validation("invalid page cursor", map[string]string{"cursor": "is invalid or expired"}))
		return
	}
	q.Page = cfg

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Roadmaps.List(ctx, q)
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to list roadmaps", err))
		return
	}
	page := paging.Finish(h.Cursors, cfg, &rows,
		func(rm models.Roadmap) string { return rm.TitleCI },
		func(rm models.Roadmap) primitive.ObjectID { return rm.ID },
	)

	apierr.WriteJSON(w, http.StatusOK, listResponse{Roadmaps: rows, Page: page})
}
