package account

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/roadmaphub/internal/app/store/users"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/normalize"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"go.uber.org/zap"
)

type registerInput struct {
	Role string `json:"role"`
}

// HandleRegister handles POST /register.
//
//   - no user yet: create it with the requested role (201); admin only when
//     self-assignment is enabled
//   - user exists with the same role: 200, record unchanged apart from last login
//   - user exists with another role: 403, roles are fixed at creation
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		h.Errs.Error(w, r, apierr.Unauthenticated("authentication required"))
		return
	}

	var in registerInput
	if err := apierr.DecodeJSON(w, r, &in); err != nil {
		h.Errs.Error(w, r, err)
		return
	}
	role := normalize.Role(in.Role)
	if !authz.IsValidRole(role) {
		e := apierr.Validation("invalid role", map[string]string{"role": "must be one of learner, editor, admin"})
		e.Extra = map[string]any{"validRoles": authz.ValidRoles()}
		h.Errs.Error(w, r, e)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Users.GetBySubject(ctx, id.Subject)
	switch {
	case err == nil:
		h.registerExisting(ctx, w, r, existing, role)
		return
	case !errors.Is(err, userstore.ErrNotFound):
		h.Errs.Error(w, r, apierr.Internal("failed to load user", err))
		return
	}

	if role == authz.RoleAdmin && !h.AllowSelfAdmin {
		h.Audit.RegisterRejected(ctx, r, id.Subject, role, "self_admin_disabled")
		h.Errs.Error(w, r, apierr.Forbidden("the admin role cannot be self-assigned"))
		return
	}

	profile, err := h.Profiles.Profile(ctx, id)
	if err != nil {
		h.Errs.Error(w, r, apierr.Internal("failed to fetch user profile", err))
		return
	}

	u, err := h.Users.Create(ctx, models.User{
		Subject: id.Subject,
		Email:   profile.Email,
		Name:    profile.Name,
		Role:    role,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateSubject):
		// A concurrent request created the user first.
		existing, err := h.Users.GetBySubject(ctx, id.Subject)
		if err != nil {
			h.Errs.Error(w, r, apierr.Internal("failed to load user", err))
			return
		}
		h.registerExisting(ctx, w, r, existing, role)
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.Errs.Error(w, r, apierr.Conflict("email is already registered to another account"))
		return
	case err != nil:
		h.Errs.Error(w, r, apierr.Internal("failed to create user", err))
		return
	}

	h.Log.Info("user registered", zap.String("subject", u.Subject), zap.String("role", u.Role))
	h.Audit.UserRegistered(ctx, r, u.Subject, u.Role, true)
	apierr.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) registerExisting(ctx context.Context, w http.ResponseWriter, r *http.Request, u *models.User, role string) {
	if u.Role != role {
		h.Audit.RegisterRejected(ctx, r, u.Subject, role, "role_immutable")
		h.Errs.Error(w, r, apierr.Forbidden("user is already registered as "+u.Role+"; roles cannot be changed"))
		return
	}
	if err := h.Users.TouchLastLogin(ctx, u.Subject); err != nil {
		h.Log.Warn("touch last login failed", zap.String("subject", u.Subject), zap.Error(err))
	}
	h.Audit.UserRegistered(ctx, r, u.Subject, u.Role, false)
	apierr.WriteJSON(w, http.StatusOK, u)
}
