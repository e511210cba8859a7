package router

import (
	"encoding/json"
	"net/http"

	"github.com/aeworks/ops-api/internal/auth"
	"github.com/aeworks/ops-api/internal/config"
	"github.com/aeworks/ops-api/internal/http/handler"
	"github.com/aeworks/ops-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/aeworks/ops-api/docs" // swagger docs
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(r *http.Request) error

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	checks          map[string]HealthCheck
	datasetHandler  *handler.DatasetHandler
	projectHandler  *handler.ProjectHandler
	syncHandler     *handler.SyncHandler
	systemHandler   *handler.SystemHandler
	feedbackHandler *handler.FeedbackHandler
	wsHandler       http.Handler
}

// Handlers groups the API handlers.
type Handlers struct {
	Dataset   *handler.DatasetHandler
	Project   *handler.ProjectHandler
	Sync      *handler.SyncHandler
	System    *handler.SystemHandler
	Feedback  *handler.FeedbackHandler
	WebSocket http.Handler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	checks map[string]HealthCheck,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		checks:          checks,
		datasetHandler:  handlers.Dataset,
		projectHandler:  handlers.Project,
		syncHandler:     handlers.Sync,
		systemHandler:   handlers.System,
		feedbackHandler: handlers.Feedback,
		wsHandler:       handlers.WebSocket,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/health/ready", rt.ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	if rt.wsHandler != nil {
		r.With(rt.authMiddleware.Authenticate).Get("/ws", rt.wsHandler.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.authMiddleware.VaultToken)

		r.Route("/datasets", func(r chi.Router) {
			r.Get("/{name}", rt.datasetHandler.Get)
			r.Put("/{name}", rt.datasetHandler.Save)
		})
		r.Get("/logo", rt.datasetHandler.GetLogo)
		r.Put("/logo", rt.datasetHandler.SaveLogo)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.projectHandler.List)
			r.Post("/", rt.projectHandler.Create)
			r.Post("/generate-code", rt.projectHandler.GenerateCode)
			r.Get("/{code}", rt.projectHandler.Get)
			r.Get("/{code}/cost", rt.projectHandler.Cost)
			r.Post("/{code}/feedback/request", rt.projectHandler.RequestFeedback)
			r.Post("/{code}/feedback/verify", rt.projectHandler.VerifyFeedback)
			r.Put("/{code}/tracking", rt.projectHandler.UpdateTracking)
			r.Put("/{code}/status", rt.projectHandler.UpdateStatus)
		})
		r.Post("/costing/preview", rt.projectHandler.PreviewCost)

		r.Route("/sync", func(r chi.Router) {
			r.Get("/runs", rt.syncHandler.Runs)
			r.Group(func(r chi.Router) {
				r.Use(rt.rateLimiter.LimitSync)
				r.Post("/", rt.syncHandler.Sync)
				r.Post("/push", rt.syncHandler.Push)
				r.Post("/inbox", rt.syncHandler.Inbox)
			})
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/meta", rt.systemHandler.Meta)
			r.Post("/connect", rt.systemHandler.Connect)
			r.Post("/disconnect", rt.systemHandler.Disconnect)
		})

		r.Route("/feedback/unassigned", func(r chi.Router) {
			r.Get("/", rt.feedbackHandler.ListUnassigned)
			r.Post("/{id}/link", rt.feedbackHandler.Link)
			r.Delete("/{id}", rt.feedbackHandler.Discard)
		})
	})

	return r
}

// ready runs every registered check.
func (rt *Router) ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{}, len(rt.checks))
	allHealthy := true

	for name, check := range rt.checks {
		if err := check(r); err != nil {
			rt.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
			continue
		}
		checks[name] = map[string]interface{}{"status": "healthy"}
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
