// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/store/audit"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	pageSize = 50
	maxPage  = 100000
)

// ServeList handles GET / - audit events, newest first, with filtering:
// category, event_type, subject, roadmap, start_date and end_date
// (YYYY-MM-DD, inclusive), and page (1-based).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, ok := gates.RequireRole(w, r, h.Errs, authz.Admins...); !ok {
		return
	}

	filter, page, verr := parseFilter(r)
	if verr != nil {
		h.Errs.Error(w, r, verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to query audit events", err))
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to count audit events", err))
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, toItem(e))
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	apierr.WriteJSON(w, http.StatusOK, listResponse{
		Events:     items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	})
}

func parseFilter(r *http.Request) (audit.QueryFilter, int, *apierr.Error) {
	fields := map[string]string{}

	page := 1
	if s := query.Get(r, "page"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p < 1 || p > maxPage {
			fields["page"] = fmt.Sprintf("must be between 1 and %d", maxPage)
		} else {
			page = p
		}
	}

	f := audit.QueryFilter{
		Subject:   query.Get(r, "subject"),
		Category:  strings.ToLower(query.Get(r, "category")),
		EventType: strings.ToLower(query.Get(r, "event_type")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}

	switch f.Category {
	case "", audit.CategoryAccount, audit.CategoryContent:
	default:
		fields["category"] = "must be account or content"
	}
	if f.EventType != "" && !slices.Contains(eventTypesForCategory(f.Category), f.EventType) {
		fields["event_type"] = "unknown event type for this category"
	}

	if s := query.Get(r, "roadmap"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			fields["roadmap"] = "must be a 24-character hex id"
		} else {
			f.RoadmapID = &id
		}
	}

	if s := query.Get(r, "start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			fields["start_date"] = "must be YYYY-MM-DD"
		} else {
			f.StartTime = &t
		}
	}
	if s := query.Get(r, "end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			fields["end_date"] = "must be YYYY-MM-DD"
		} else {
			// End of day
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			f.EndTime = &endOfDay
		}
	}

	if len(fields) > 0 {
		return audit.QueryFilter{}, 0, apierr.Validation("invalid audit filter", fields)
	}
	return f, page, nil
}
