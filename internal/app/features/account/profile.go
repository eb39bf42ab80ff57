package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	userstore "github.com/dalemusser/roadmaphub/internal/app/store/users"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/gates"
	"github.com/dalemusser/roadmaphub/internal/app/system/inputval"
	"github.com/dalemusser/roadmaphub/internal/app/system/normalize"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
)

// profileInput is the PUT /profile body. Omitted fields keep their current
// value. Role is captured only to reject attempts to change it.
type profileInput struct {
	Name  *string         `json:"name"`
	Email *string         `json:"email"`
	Role  json.RawMessage `json:"role"`
}

// ServeProfile handles GET /profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	stored, err := h.Users.GetBySubject(ctx, u.Subject)
	if errors.Is(err, userstore.ErrNotFound) {
		h.Errs.Error(w, r, apierr.NotFound("user not found"))
		return
	}
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to load user", err))
		return
	}
	apierr.WriteJSON(w, http.StatusOK, stored)
}

// HandleUpdateProfile handles PUT /profile: name and email only.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := gates.RequireRole(w, r, h.Errs, authz.AnyRole...)
	if !ok {
		return
	}

	var in profileInput
	if err := apierr.DecodeJSON(w, r, &in); err != nil {
		h.Errs.Error(w, r, err)
		return
	}
	if len(in.Role) > 0 {
		h.Errs.Error(w, r, apierr.Forbidden("role cannot be changed"))
		return
	}

	name, email := u.Name, u.Email
	if in.Name != nil {
		name = normalize.Name(*in.Name)
	}
	if in.Email != nil {
		email = normalize.Email(*in.Email)
	}

	fields := map[string]string{}
	switch {
	case name == "":
		fields["name"] = "is required"
	case inputval.TooLong(name, inputval.MaxNameLen):
		fields["name"] = fmt.Sprintf("must be at most %d characters", inputval.MaxNameLen)
	}
	if email != "" && !inputval.IsValidEmail(email) {
		fields["email"] = "must be a valid email address"
	}
	if len(fields) > 0 {
		h.Errs.Error(w, r, apierr.Validation("invalid profile", fields))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Users.UpdateProfile(ctx, u.Subject, name, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.Errs.Error(w, r, apierr.NotFound("user not found"))
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.Errs.Error(w, r, apierr.Conflict("email is already registered to another account"))
		return
	case err != nil:
		h.Errs.Error(w, r, apierr.Internal("failed to update profile", err))
		return
	}

	h.Audit.ProfileUpdated(ctx, r, u.Subject)
	apierr.WriteJSON(w, http.StatusOK, updated)
}
