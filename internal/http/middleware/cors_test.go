package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aeworks/ops-api/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func preflight(t *testing.T, cfg *config.CORSConfig, env, origin string) *httptest.ResponseRecorder {
	t.Helper()
	h := CORS(cfg, env, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	base := func(origins ...string) *config.CORSConfig {
		return &config.CORSConfig{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "x-api-key", "X-Vault-Token"},
			MaxAge:         300,
		}
	}

	tests := []struct {
		name    string
		cfg     *config.CORSConfig
		env     string
		origin  string
		allowed bool
	}{
		{name: "development allows any origin", cfg: base(), env: "development", origin: "http://localhost:5173", allowed: true},
		{name: "production without origins denies", cfg: base(), env: "production", origin: "http://localhost:5173"},
		{name: "explicit origin", cfg: base("https://ops.example.com"), env: "production", origin: "https://ops.example.com", allowed: true},
		{name: "unlisted origin", cfg: base("https://ops.example.com"), env: "production", origin: "https://evil.example.com"},
		{name: "wildcard", cfg: base("*"), env: "production", origin: "https://anything.example.com", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := preflight(t, tt.cfg, tt.env, tt.origin)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
