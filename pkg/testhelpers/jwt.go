// Package testhelpers provides utilities for testing ekaya-discovery components.
package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateTestJWT signs an admin session token with secret, using the same
// HS256 claim layout the auth package issues.
func GenerateTestJWT(secret, adminID, email string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   adminID,
		"email": email,
		"iss":   "ekaya-discovery",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return token
}
