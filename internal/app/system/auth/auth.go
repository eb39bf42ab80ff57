// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Identity & current-user helpers                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Identity is what a verified bearer token tells us about the caller.
// Email and Name are optional claims; Token is kept for userinfo lookups.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Token   string
	Dev     bool // synthesized by the development bypass
}

// User is the application account resolved for an Identity. It is placed in
// the request context by the gate middleware.
type User struct {
	ID      string
	Subject string
	Name    string
	Email   string
	Role    string
}

type ctxKey string

const (
	identityKey    ctxKey = "identity"
	currentUserKey ctxKey = "currentUser"
)

// CurrentIdentity returns the verified caller identity and a found flag.
func CurrentIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}

// CurrentUser returns the resolved application user and a found flag.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*User)
	return u, ok
}

// WithUser returns r carrying u as the current user.
func WithUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Authenticator                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// Options configures an Authenticator.
type Options struct {
	// DevBypass accepts requests without a token as DevSubject.
	// Must never be enabled in production; ValidateConfig enforces that.
	DevBypass  bool
	DevSubject string
}

// Authenticator verifies bearer tokens and attaches the caller Identity.
type Authenticator struct {
	verifier TokenVerifier
	opts     Options
	errs     *apierr.Writer
	log      *zap.Logger
}

// NewAuthenticator builds an Authenticator. verifier may be nil only when
// opts.DevBypass is set.
func NewAuthenticator(verifier TokenVerifier, opts Options, errs *apierr.Writer, logger *zap.Logger) *Authenticator {
	if opts.DevSubject == "" {
		opts.DevSubject = "dev_user_1"
	}
	return &Authenticator{verifier: verifier, opts: opts, errs: errs, log: logger}
}

// DevIdentity is the synthetic caller used by the development bypass.
func DevIdentity(subject string) Identity {
	return Identity{
		Subject: subject,
		Email:   subject + "@dev.local",
		Name:    "Dev User",
		Dev:     true,
	}
}

var errMalformedHeader = errors.New("authorization header must use the Bearer scheme")

// bearerToken extracts the token from an Authorization header.
// ok is false when no header is present.
func bearerToken(r *http.Request) (tok string, ok bool, err error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", false, nil
	}
	scheme, rest, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(rest) == "" {
		return "", true, errMalformedHeader
	}
	return strings.TrimSpace(rest), true, nil
}

// Authenticate attaches an Identity when the request carries a valid bearer
// token. A present but invalid token is rejected with 401. Requests without
// a token continue anonymously, or as the dev identity under DevBypass.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, present, err := bearerToken(r)
		if err != nil {
			a.errs.Error(w, r, apierr.Unauthenticated(err.Error()))
			return
		}

		if a.opts.DevBypass && (!present || a.verifier == nil) {
			next.ServeHTTP(w, withIdentity(r, DevIdentity(a.opts.DevSubject)))
			return
		}
		if !present {
			next.ServeHTTP(w, r)
			return
		}
		if a.verifier == nil {
			a.errs.Error(w, r, apierr.Unauthenticated("token verification is not configured"))
			return
		}

		id, err := a.verifier.Verify(tok)
		if err != nil {
			a.log.Debug("bearer token rejected", zap.Error(err))
			a.errs.Error(w, r, &apierr.Error{Kind: apierr.KindAuthentication, Message: "invalid or expired token", Err: err})
			return
		}
		id.Token = tok
		next.ServeHTTP(w, withIdentity(r, id))
	})
}

// RequireIdentity rejects requests that Authenticate left anonymous.
func (a *Authenticator) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentIdentity(r); !ok {
			a.errs.Error(w, r, apierr.Unauthenticated("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Test helpers                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// WithTestIdentity attaches id to r. For tests only.
func WithTestIdentity(r *http.Request, id Identity) *http.Request {
	return withIdentity(r, id)
}

// WithTestUser attaches both an identity and a resolved user to r.
// For tests only.
func WithTestUser(r *http.Request, u *User) *http.Request {
	r = withIdentity(r, Identity{Subject: u.Subject, Email: u.Email, Name: u.Name})
	return WithUser(r, u)
}
