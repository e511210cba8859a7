package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/aeworks/ops-api/internal/config"
	"go.uber.org/zap"
)

// VaultTokenHeader carries the caller's cloud bearer token
const VaultTokenHeader = "X-Vault-Token"

// Middleware handles authentication for HTTP requests
type Middleware struct {
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, logger *zap.Logger) *Middleware {
	return &Middleware{
		apiKey: cfg.ApiKey.Value,
		logger: logger,
	}
}

// Authenticate requires the x-api-key header when an API key is configured.
// Without a configured key (single-workstation installs) every request passes
// as anonymous.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.apiKey == "" {
			ctx := WithPrincipal(r.Context(), &Principal{Kind: KindAnonymous, Name: "local"})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		key := r.Header.Get("x-api-key")
		if key == "" && websocketUpgrade(r) {
			// browsers cannot set headers on websocket handshakes
			key = r.URL.Query().Get("api_key")
		}
		if key == "" {
			http.Error(w, "Unauthorized: missing API key", http.StatusUnauthorized)
			return
		}
		if !m.validateAPIKey(key) {
			m.logger.Warn("invalid API key attempt",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := WithPrincipal(r.Context(), &Principal{Kind: KindAPIKey, Name: "system"})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VaultToken copies the cloud token from X-Vault-Token, or from a Bearer
// Authorization header, into the request context.
func (m *Middleware) VaultToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := ExtractVaultToken(r); token != "" {
			r = r.WithContext(WithVaultToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractVaultToken returns the cloud token sent with r, "" when none.
func ExtractVaultToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(VaultTokenHeader)); token != "" {
		return token
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func (m *Middleware) validateAPIKey(key string) bool {
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
