package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aeworks/ops-api/docs"
	"github.com/aeworks/ops-api/internal/app"
	"github.com/aeworks/ops-api/internal/auth"
	"github.com/aeworks/ops-api/internal/config"
	"github.com/aeworks/ops-api/internal/database"
	"github.com/aeworks/ops-api/internal/http/handler"
	"github.com/aeworks/ops-api/internal/http/middleware"
	"github.com/aeworks/ops-api/internal/http/router"
	"github.com/aeworks/ops-api/internal/jobs"
	"github.com/aeworks/ops-api/internal/logger"
	"github.com/aeworks/ops-api/internal/websocket"
	"go.uber.org/zap"
)

// @title AE Works Ops API
// @version 1.0
// @description Local-first operations store with cloud master-document sync, feedback inbox ingestion and project costing.

// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key, required when one is configured

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// basic configuration first, for logging setup
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	cloudSync := jobs.NewCloudSyncJob(a.Sync, log.Named("jobs"), cfg.Sync.TimeoutDuration())

	// realtime notifications; visibility pings run a sync
	hub := websocket.NewHub(cloudSync.RunTrigger, log.Named("ws"))
	go hub.Run(ctx)
	unsubscribe := a.Bus.Subscribe(hub.OnChange)
	defer unsubscribe()
	a.Sync.WithNotifier(hub)

	rt := router.NewRouter(
		cfg,
		log,
		auth.NewMiddleware(cfg, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		map[string]router.HealthCheck{
			"database": func(r *http.Request) error { return database.HealthCheck(r.Context(), a.DB) },
			"vault": func(r *http.Request) error {
				token := a.StoredToken(r.Context())
				if token == "" {
					return nil // not connected yet
				}
				return a.Vault.Ping(r.Context(), token)
			},
		},
		router.Handlers{
			Dataset:   handler.NewDatasetHandler(a.Datasets, log),
			Project:   handler.NewProjectHandler(a.Projects, a.Costing, log),
			Sync:      handler.NewSyncHandler(a.Sync, a.Runs, log),
			System:    handler.NewSystemHandler(a.System, log),
			Feedback:  handler.NewFeedbackHandler(a.Inbox, log),
			WebSocket: websocket.NewHandler(hub, cfg.CORS.AllowedOrigins),
		},
	)

	scheduler, watcher := startBackground(cfg, a, cloudSync, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if watcher != nil {
			if err := watcher.Stop(); err != nil {
				log.Warn("Error stopping inbox watcher", zap.Error(err))
			}
		}
		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}
		stop()

		log.Info("Server stopped gracefully")
	}

	return nil
}

// startBackground registers the timer and connectivity triggers and, for a
// filesystem vault, the inbox watcher. Either return value may be nil.
func startBackground(cfg *config.Config, a *app.App, cloudSync *jobs.CloudSyncJob, log *zap.Logger) (*jobs.Scheduler, *jobs.InboxWatcher) {
	if !cfg.Sync.Enabled {
		log.Info("Background sync disabled")
		return nil, nil
	}

	scheduler := jobs.NewScheduler(log.Named("scheduler"))
	if err := jobs.RegisterCloudSyncJob(scheduler, cloudSync, cfg.Sync.Cron, cfg.Sync.RunOnStartup); err != nil {
		log.Error("Failed to register cloud sync job", zap.Error(err))
	}
	if cfg.Sync.ConnectivityCron != "" {
		probe := jobs.NewConnectivityWatcher(a.Vault, a.StoredToken, cloudSync, log.Named("connectivity"), cfg.Vault.RequestTimeoutDuration())
		if err := jobs.RegisterConnectivityWatcher(scheduler, probe, cfg.Sync.ConnectivityCron); err != nil {
			log.Error("Failed to register connectivity probe", zap.Error(err))
		}
	}
	scheduler.Start()
	log.Info("Next cloud sync", zap.Time("at", scheduler.NextRun(jobs.CloudSyncJobName)))
	log.Info("Scheduler started",
		zap.String("sync_cron", cfg.Sync.Cron),
		zap.String("connectivity_cron", cfg.Sync.ConnectivityCron),
		zap.Duration("timeout", cfg.Sync.TimeoutDuration()),
	)

	dir := a.LocalVaultDir()
	if !cfg.Sync.WatchInbox || dir == "" {
		return scheduler, nil
	}
	watcher := jobs.NewInboxWatcher(dir, cfg.Vault.InboxFolderName, a.Sync, a.StoredToken, log.Named("inbox-watcher"), 2*time.Second, cfg.Sync.TimeoutDuration())
	if err := watcher.Start(); err != nil {
		log.Warn("Inbox watcher unavailable", zap.Error(err))
		return scheduler, nil
	}
	return scheduler, watcher
}
