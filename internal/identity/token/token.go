// Package token validates bearer tokens issued by the identity provider.
//
// Tokens carry only the subject user ID. Role flags and capabilities are
// resolved against the identity store per request so they cannot go stale
// inside a long-lived token.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"worktrack/internal/platform/middleware"
	id "worktrack/pkg/domain"
)

// Validator validates HS256 tokens signed with the shared signing key.
type Validator struct {
	signingKey []byte
}

// NewValidator creates a Validator for the given signing key.
func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and validates a bearer token, returning the claims
// the middleware injects into the request context.
func (v *Validator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("token subject: %w", err)
	}
	userID, err := id.ParseUserID(subject)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", err)
	}

	return &middleware.JWTClaims{UserID: userID}, nil
}

// Issue signs a token for the given user. Used by tests and development
// tooling; production tokens come from the identity provider.
func Issue(signingKey string, userID id.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(signingKey))
}
