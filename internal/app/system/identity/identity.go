// Package identity resolves the profile (email, display name) used when a
// user record is provisioned for a newly seen caller.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/roadmaphub/internal/app/system/auth"
	"github.com/dalemusser/roadmaphub/internal/app/system/normalize"
)

// Profile is the subset of provider claims stored on a User.
type Profile struct {
	Email string
	Name  string
}

// ProfileLookup fetches a profile from the identity provider using the
// caller's access token.
type ProfileLookup interface {
	Lookup(ctx context.Context, accessToken string) (Profile, error)
}

// Resolver combines token claims with an optional provider lookup.
type Resolver struct {
	lookup ProfileLookup
}

// NewResolver returns a Resolver. lookup may be nil, in which case only
// token claims are used.
func NewResolver(lookup ProfileLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Profile returns the email and name for id. Claims on the token win; the
// provider is asked only for what is missing. Dev identities never reach
// the provider.
func (r *Resolver) Profile(ctx context.Context, id auth.Identity) (Profile, error) {
	p := Profile{Email: normalize.Email(id.Email), Name: normalize.Name(id.Name)}

	if id.Dev {
		if p.Email == "" {
			p.Email = id.Subject + "@dev.local"
		}
		if p.Name == "" {
			p.Name = "Dev User"
		}
		return p, nil
	}

	complete := p.Email != "" && p.Name != ""
	if !complete && r != nil && r.lookup != nil && id.Token != "" {
		info, err := r.lookup.Lookup(ctx, id.Token)
		if err != nil {
			return Profile{}, fmt.Errorf("userinfo lookup for %s: %w", id.Subject, err)
		}
		if p.Email == "" {
			p.Email = normalize.Email(info.Email)
		}
		if p.Name == "" {
			p.Name = normalize.Name(info.Name)
		}
	}

	if p.Name == "" {
		p.Name = fallbackName(p.Email)
	}
	return p, nil
}

// fallbackName derives a display name from the email local part.
func fallbackName(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "Learner"
}
