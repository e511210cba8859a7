package middleware

import (
	"net/http"
	"slices"

	"github.com/aeworks/ops-api/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS builds the cross-origin handler. An empty origin list opens every
// origin in development and closes them all elsewhere; "*" opens every origin.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	dev := environment == "" || environment == "development" || environment == "local"
	anyOrigin := func(_ *http.Request, origin string) bool { return origin != "" }

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !dev {
			logger.Warn("wildcard CORS origin outside development", zap.String("environment", environment))
		}
		opts.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		opts.AllowedOrigins = cfg.AllowedOrigins
		logger.Debug("CORS origins", zap.Strings("origins", cfg.AllowedOrigins))
	case dev:
		opts.AllowOriginFunc = anyOrigin
	default:
		// cors treats an empty list as "*"
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
		logger.Warn("no CORS origins configured, cross-origin requests are denied", zap.String("environment", environment))
	}

	return cors.Handler(opts)
}
