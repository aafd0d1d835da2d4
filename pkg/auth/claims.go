// Package auth signs reviewers in and out of ekaya-discovery.
// Credentials are checked against bcrypt hashes stored in discovery_admins;
// a successful sign-in yields an HS256 JWT that is kept in a signed cookie
// (browser clients) or sent as a Bearer token (API clients).
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the "iss" claim of every token this package signs.
const Issuer = "ekaya-discovery"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for storing JWT claims.
const ClaimsKey contextKey = "claims"

// Claims is the token payload. Subject holds the admin UUID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}
