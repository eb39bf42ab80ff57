package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier turns a raw bearer token into an Identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// ErrMissingSubject is returned for otherwise valid tokens without a sub claim.
var ErrMissingSubject = errors.New("token has no subject")

type claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates signed JWTs issued by the identity provider.
type JWTVerifier struct {
	key     any
	methods []string
	opts    []jwt.ParserOption
}

func parserOptions(methods []string, issuer, audience string) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}

// NewHMACVerifier verifies HS256 tokens signed with secret.
func NewHMACVerifier(secret []byte, issuer, audience string) *JWTVerifier {
	methods := []string{jwt.SigningMethodHS256.Alg()}
	return &JWTVerifier{
		key:     secret,
		methods: methods,
		opts:    parserOptions(methods, issuer, audience),
	}
}

// NewPublicKeyVerifier verifies RS256 or ES256 tokens against a PEM encoded
// public key (PKIX, PKCS#1, or a certificate).
func NewPublicKeyVerifier(pemBytes []byte, issuer, audience string) (*JWTVerifier, error) {
	if rsaKey, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes); err == nil {
		methods := []string{jwt.SigningMethodRS256.Alg()}
		return &JWTVerifier{key: rsaKey, methods: methods, opts: parserOptions(methods, issuer, audience)}, nil
	}
	ecKey, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: not an RSA or EC key: %w", err)
	}
	methods := []string{jwt.SigningMethodES256.Alg()}
	return &JWTVerifier{key: ecKey, methods: methods, opts: parserOptions(methods, issuer, audience)}, nil
}

// Verify checks signature, algorithm, expiry, and the optional issuer and
// audience, then returns the caller Identity.
func (v *JWTVerifier) Verify(raw string) (Identity, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil {
		return Identity{}, err
	}
	if !tok.Valid {
		return Identity{}, jwt.ErrTokenSignatureInvalid
	}
	sub := strings.TrimSpace(c.Subject)
	if sub == "" {
		return Identity{}, ErrMissingSubject
	}
	return Identity{Subject: sub, Email: c.Email, Name: c.Name}, nil
}
