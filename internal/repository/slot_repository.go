package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlotNotFound is returned when a slot has never been written.
var ErrSlotNotFound = errors.New("slot not found")

// SlotRepository persists raw slot payloads. It knows nothing about the
// payload shape; decoding and fail-soft handling live in the store package.
type SlotRepository struct {
	db *gorm.DB
}

// NewSlotRepository creates a new SlotRepository
func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Get returns the payload stored under key
func (r *SlotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var slot domain.DatasetSlot
	err := r.db.WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return []byte(slot.Payload), nil
}

// Put replaces the payload stored under key
func (r *SlotRepository) Put(ctx context.Context, key string, payload []byte) error {
	slot := domain.DatasetSlot{
		SlotKey:   key,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete removes a slot; deleting a missing slot is not an error
func (r *SlotRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&domain.DatasetSlot{}).Error; err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// Keys lists every written slot key
func (r *SlotRepository) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&domain.DatasetSlot{}).Order("slot_key").Pluck("slot_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return keys, nil
}
