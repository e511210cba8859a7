package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingEmail = errors.New("token has no email claim")
)

// IDTokenClaims are the identity claims read from an OpenID Connect ID token
type IDTokenClaims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ParseIDToken reads the claims of an ID token issued to the desktop client
// during the cloud sign-in. The signature is not checked: the token only
// labels the connected account and grants nothing. Expired tokens are
// rejected.
func ParseIDToken(raw string, now time.Time) (*IDTokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	out := &IDTokenClaims{}
	out.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
		if now.After(exp.Time) {
			return nil, ErrExpiredToken
		}
	}

	// Different providers use different claim names
	for _, key := range []string{"email", "preferred_username", "upn"} {
		if v, ok := claims[key].(string); ok && strings.Contains(v, "@") {
			out.Email = v
			break
		}
	}
	if name, ok := claims["name"].(string); ok {
		out.Name = name
	}
	if out.Email == "" {
		return out, ErrMissingEmail
	}
	return out, nil
}
