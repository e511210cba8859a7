package repository

import (
	"context"

	"github.com/aeworks/ops-api/internal/domain"
	"gorm.io/gorm"
)

// SyncRunRepository stores the append-only history of sync runs
type SyncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a new SyncRunRepository
func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts a run (append-only - no updates allowed)
func (r *SyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// ListRecent returns the newest runs first, optionally filtered by kind
func (r *SyncRunRepository) ListRecent(ctx context.Context, kind string, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&domain.SyncRun{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var runs []domain.SyncRun
	if err := query.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
