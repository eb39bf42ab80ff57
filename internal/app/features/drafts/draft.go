package drafts

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/drafting"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/inputval"
	"github.com/dalemusser/roadmaphub/internal/app/system/normalize"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const maxLevelLen = 50

type draftInput struct {
	Topic string `json:"topic"`
	Level string `json:"level"`
}

// HandleDraft handles POST /roadmap. The draft is returned to the caller
// for review and is not saved.
func (h *Handler) HandleDraft(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, h.AuthorRoles...)
	if !ok {
		return
	}
	if h.Generator == nil {
		h.Errs.Error(w, r, apierr.Unavailable("roadmap drafting is not configured"))
		return
	}

	var in draftInput
	if err := apierr.DecodeJSON(w, r, &in); err != nil {
		h.Errs.Error(w, r, err)
		return
	}
	req := drafting.Request{Topic: normalize.Name(in.Topic), Level: normalize.Name(in.Level)}
	fields := map[string]string{}
	switch {
	case req.Topic == "":
		fields["topic"] = "is required"
	case inputval.TooLong(req.Topic, inputval.MaxTitleLen):
		fields["topic"] = fmt.Sprintf("must be at most %d characters", inputval.MaxTitleLen)
	}
	if inputval.TooLong(req.Level, maxLevelLen) {
		fields["level"] = fmt.Sprintf("must be at most %d characters", maxLevelLen)
	}
	if len(fields) > 0 {
		h.Errs.Error(w, r, apierr.Validation("invalid draft request", fields))
		return
	}

	if h.Limiter != nil {
		d, err := h.Limiter.Allow(r.Context(), u.Subject)
		switch {
		case err != nil:
			// A broken limiter backend does not block drafting.
			h.Log.Warn("rate limiter unavailable", zap.String("subject", u.Subject), zap.Error(err))
		case !d.Allowed:
			h.Errs.Error(w, r, apierr.RateLimited(d.RetryAfter))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	draft, err := drafting.Generate(ctx, h.Generator, req)
	var perr *drafting.ParseError
	switch {
	case errors.As(err, &perr):
		h.Log.Info("draft could not be parsed", zap.String("subject", u.Subject), zap.String("reason", perr.Reason))
		h.Errs.Error(w, r, &apierr.Error{
			Kind:    apierr.KindParseFailed,
			Message: "the generated roadmap could not be parsed; edit it manually",
			Extra:   map[string]any{"raw": perr.Raw},
			Err:     err,
		})
		return
	case err != nil:
		h.Errs.Error(w, r, apierr.Internal("failed to generate roadmap draft", err))
		return
	}

	h.Log.Info("roadmap drafted", zap.String("subject", u.Subject), zap.Int("steps", len(draft.Steps)))
	apierr.WriteJSON(w, http.StatusOK, draft)
}
