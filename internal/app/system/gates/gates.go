// Package gates resolves the application user for an authenticated caller
// and enforces per-route role requirements.
//
// # Two-Step Authorization
//
//  1. Route-level middleware, applied in routes.go. Each turns the verified
//     Identity into a stored User and attaches it to the request context.
//     Gate.LoadUser provisions a learner account on first sight and guards
//     the write routes. Gate.LoadRegistered (404 for unknown callers) and
//     Gate.LoadUserIfPresent (anonymous pass-through) only look users up, so
//     reads never pin a caller's role before registration.
//
//  2. Handler-level checks (RequireRole and the authz helpers)
//     Each handler states the roles it accepts with RequireRole, and checks
//     resource ownership with authz.CanModifyRoadmap / authz.CanViewRoadmap.
//
// A missing identity is 401. A known caller without the needed role or
// ownership is 403.
package gates

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/roadmaphub/internal/app/store/users"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/auditlog"
	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/authz"
	"github.com/dalemusser/roadmaphub/internal/app/system/identity"
	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"go.uber.org/zap"
)

// Gate provisions and loads users. Profiles and Audit may be nil.
type Gate struct {
	Users    *userstore.Store
	Profiles *identity.Resolver
	Audit    *auditlog.Logger
	Errs     *apierr.Writer
	Log      *zap.Logger
}

// LoadUser requires an identity and attaches the matching User, creating it
// as a learner if this is the caller's first request.
func (g *Gate) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := auth.CurrentIdentity(r)
		if !ok {
			g.Errs.Error(w, r, apierr.Unauthenticated("authentication required"))
			return
		}
		u, err := g.resolve(r, id)
		if err != nil {
			g.Errs.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, auth.WithUser(r, u))
	})
}

// LoadRegistered requires an identity and attaches the stored User. Unlike
// LoadUser it never provisions: a caller with no record gets 404, which
// clients read as "not registered yet".
func (g *Gate) LoadRegistered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := auth.CurrentIdentity(r)
		if !ok {
			g.Errs.Error(w, r, apierr.Unauthenticated("authentication required"))
			return
		}
		u, err := g.lookup(r, id)
		if err != nil {
			g.Errs.Error(w, r, err)
			return
		}
		if u == nil {
			g.Errs.Error(w, r, apierr.NotFound("user not found; register first"))
			return
		}
		next.ServeHTTP(w, auth.WithUser(r, u))
	})
}

// LoadUserIfPresent attaches the stored User when the caller is known.
// Anonymous callers and identities without a record pass through with no
// user; nothing is provisioned, so browsing never fixes a caller's role.
func (g *Gate) LoadUserIfPresent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := auth.CurrentIdentity(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		u, err := g.lookup(r, id)
		if err != nil {
			g.Errs.Error(w, r, err)
			return
		}
		if u == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, auth.WithUser(r, u))
	})
}

// lookup returns the stored user for id, or nil when there is none.
func (g *Gate) lookup(r *http.Request, id auth.Identity) (*auth.User, error) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := g.Users.GetBySubject(ctx, id.Subject)
	switch {
	case err == nil:
		return toAuthUser(existing), nil
	case errors.Is(err, userstore.ErrNotFound):
		return nil, nil
	default:
		return nil, apierr.Internal("failed to load user", err)
	}
}

func (g *Gate) resolve(r *http.Request, id auth.Identity) (*auth.User, error) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := g.Users.GetBySubject(ctx, id.Subject)
	if err == nil {
		return toAuthUser(existing), nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return nil, apierr.Internal("failed to load user", err)
	}

	profile, err := g.Profiles.Profile(ctx, id)
	if err != nil {
		return nil, apierr.Internal("failed to fetch user profile", err)
	}

	u, created, err := g.Users.EnsureUser(ctx, models.User{
		Subject: id.Subject,
		Email:   profile.Email,
		Name:    profile.Name,
		Role:    authz.DefaultRole,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return nil, apierr.Conflict("email is already registered to another account")
	}
	if err != nil {
		return nil, apierr.Internal("failed to provision user", err)
	}
	if created {
		g.Log.Info("user provisioned", zap.String("subject", u.Subject))
		g.Audit.UserProvisioned(ctx, r, u.Subject, u.Role)
	}
	return toAuthUser(u), nil
}

func toAuthUser(u *models.User) *auth.User {
	return &auth.User{
		ID:      u.ID.Hex(),
		Subject: u.Subject,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
	}
}

// RequireRole ensures the request carries a user whose role is one of roles.
// It writes 401 or 403 and returns false otherwise.
func RequireRole(w http.ResponseWriter, r *http.Request, errs *apierr.Writer, roles ...string) (*auth.User, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u == nil {
		errs.Error(w, r, apierr.Unauthenticated("authentication required"))
		return nil, false
	}
	if !authz.Authorize(u.Role, roles...) {
		errs.Error(w, r, apierr.Forbidden("your role does not allow this action"))
		return nil, false
	}
	return u, true
}
