package service

import (
	"context"
	"fmt"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/store"
	"go.uber.org/zap"
)

// DatasetService exposes raw dataset reads and whole-dataset writes
type DatasetService struct {
	store  *store.LocalStore
	logger *zap.Logger
}

// NewDatasetService creates a new DatasetService
func NewDatasetService(localStore *store.LocalStore, logger *zap.Logger) *DatasetService {
	return &DatasetService{store: localStore, logger: logger}
}

// Get returns a dataset's records.
func (s *DatasetService) Get(ctx context.Context, dataset string) ([]domain.Record, error) {
	if !domain.IsRecordSlot(dataset) {
		return nil, fmt.Errorf("%w: unknown dataset %q", ErrNotFound, dataset)
	}
	return s.store.Get(ctx, dataset), nil
}

// Save replaces a dataset and returns the stored records.
func (s *DatasetService) Save(ctx context.Context, dataset string, records []domain.Record) ([]domain.Record, error) {
	if !domain.IsRecordSlot(dataset) {
		return nil, fmt.Errorf("%w: unknown dataset %q", ErrNotFound, dataset)
	}
	if err := s.store.Save(ctx, dataset, records); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, dataset), nil
}

// Logo returns the stored logo data URL.
func (s *DatasetService) Logo(ctx context.Context) string {
	return s.store.GetLogo(ctx)
}

// SaveLogo stores the logo data URL.
func (s *DatasetService) SaveLogo(ctx context.Context, dataURL string) error {
	return s.store.SaveLogo(ctx, dataURL)
}
