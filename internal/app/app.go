// Package app assembles the store, vault client and services shared by the
// API server and the opsctl command.
package app

import (
	"context"
	"fmt"

	"github.com/aeworks/ops-api/internal/config"
	"github.com/aeworks/ops-api/internal/database"
	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/events"
	"github.com/aeworks/ops-api/internal/repository"
	"github.com/aeworks/ops-api/internal/service"
	"github.com/aeworks/ops-api/internal/storage"
	"github.com/aeworks/ops-api/internal/store"
	"github.com/aeworks/ops-api/internal/vault"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired components.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB
	Bus     *events.Bus
	Backend storage.Backend
	Vault   *vault.Client
	Store   *store.LocalStore
	Meta    *store.MetaStore
	Runs    *repository.SyncRunRepository

	Datasets *service.DatasetService
	Projects *service.ProjectService
	Costing  *service.CostingService
	System   *service.SystemService
	Inbox    *service.InboxService
	Sync     *service.SyncService
}

// New opens the database, applies migrations and builds every service.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	backend, err := storage.NewBackend(&cfg.Vault, log)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to initialize vault backend: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Bus:     events.NewBus(),
		Backend: backend,
		Runs:    repository.NewSyncRunRepository(db),
	}

	slots := repository.NewSlotRepository(db)
	a.Store = store.NewLocalStore(slots, a.Bus, log)
	a.Meta = store.NewMetaStore(slots, metaDefaults(&cfg.Vault), log)
	a.Vault = vault.NewClient(backend, vault.Options{
		MasterDocumentName: cfg.Vault.MasterDocumentName,
		InboxFolderName:    cfg.Vault.InboxFolderName,
		RequestTimeout:     cfg.Vault.RequestTimeoutDuration(),
	}, log.Named("vault"))

	a.Datasets = service.NewDatasetService(a.Store, log)
	a.Projects = service.NewProjectService(a.Store, log)
	a.Costing = service.NewCostingService(a.Store, a.Projects, log)
	a.System = service.NewSystemService(a.Meta, log)
	a.Inbox = service.NewInboxService(a.Store, a.Meta, a.Vault, cfg.App.Name, log.Named("inbox"))
	a.Sync = service.NewSyncService(a.Store, a.Meta, a.Vault, a.Inbox, a.Runs, a.Bus, cfg.App.Name, log.Named("sync"))

	log.Info("Application components initialized",
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("vault_backend", cfg.Vault.Backend),
	)
	return a, nil
}

// metaDefaults seeds SystemMeta. Backends that authenticate on their own
// (local directory, azure connection string) get a placeholder token so
// background syncs run without a connect step.
func metaDefaults(cfg *config.VaultConfig) domain.SystemMeta {
	m := domain.SystemMeta{ClientID: cfg.DriveClientID}
	if cfg.Backend != "drive" {
		m.AccessToken = cfg.Backend
	}
	return m
}

// StoredToken returns the token background triggers run with.
func (a *App) StoredToken(ctx context.Context) string {
	return a.Meta.Get(ctx).AccessToken
}

// LocalVaultDir returns the vault directory when the backend is the local
// filesystem, "" otherwise.
func (a *App) LocalVaultDir() string {
	if lb, ok := a.Backend.(*storage.LocalBackend); ok {
		return lb.BasePath()
	}
	return ""
}

// Close releases the database.
func (a *App) Close() error {
	return database.Close(a.DB)
}
