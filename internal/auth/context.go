package auth

import (
	"context"
)

// Principal identifies the caller of a request
type Principal struct {
	// Kind is "api_key" or "anonymous"
	Kind string
	Name string
}

// Principal kinds
const (
	KindAPIKey    = "api_key"
	KindAnonymous = "anonymous"
)

type contextKey string

const (
	principalKey  contextKey = "principal"
	vaultTokenKey contextKey = "vaultToken"
)

// WithPrincipal adds the caller to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext extracts the caller from the context
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// WithVaultToken stores the cloud bearer token supplied with a request
func WithVaultToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, vaultTokenKey, token)
}

// VaultTokenFromContext returns the request's cloud token, "" when none was sent
func VaultTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(vaultTokenKey).(string)
	return token
}
