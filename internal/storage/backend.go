package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aeworks/ops-api/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a file id does not exist
	ErrNotFound = errors.New("file not found")
	// ErrUnauthorized is returned when the backend rejects the token
	ErrUnauthorized = errors.New("unauthorized")
)

// FileInfo describes one remote file or folder.
type FileInfo struct {
	ID         string
	Name       string
	Folder     bool
	ModifiedAt time.Time
}

// Backend is the file transport the vault client runs on. Every call
// receives the caller's bearer token; backends that authenticate otherwise
// ignore it. Overwrite is a full replace with no version check.
type Backend interface {
	// Find returns files or folders named exactly name inside parentID
	// ("" is the root), in backend order.
	Find(ctx context.Context, token, name, parentID string, folder bool) ([]FileInfo, error)
	// List returns the files directly inside parentID.
	List(ctx context.Context, token, parentID string) ([]FileInfo, error)
	Create(ctx context.Context, token, name, parentID string, data []byte) (FileInfo, error)
	Read(ctx context.Context, token, id string) ([]byte, error)
	Overwrite(ctx context.Context, token, id string, data []byte) error
	// Delete removes a file; deleting a missing file is not an error.
	Delete(ctx context.Context, token, id string) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context, token string) error
}

// NewBackend creates the backend selected by configuration.
func NewBackend(cfg *config.VaultConfig, logger *zap.Logger) (Backend, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalBackend(cfg.LocalBasePath)
	case "azure":
		if cfg.AzureConnectionString == "" {
			return nil, fmt.Errorf("azure connection string required for azure vault backend")
		}
		return NewAzureBlobBackend(cfg.AzureConnectionString, cfg.AzureContainer, logger)
	case "drive":
		return NewDriveBackend(logger), nil
	default:
		return nil, fmt.Errorf("unsupported vault backend: %s", cfg.Backend)
	}
}
