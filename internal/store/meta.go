package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aeworks/ops-api/internal/domain"
	"go.uber.org/zap"
)

// MetaStore owns the SystemMeta singleton. It reads stored partial state over
// defaults and writes the legacy single-element array form.
type MetaStore struct {
	slots    SlotStore
	defaults domain.SystemMeta
	logger   *zap.Logger
}

// NewMetaStore creates a MetaStore over any slot persistence.
func NewMetaStore(slots SlotStore, defaults domain.SystemMeta, logger *zap.Logger) *MetaStore {
	return &MetaStore{slots: slots, defaults: defaults, logger: logger}
}

// Get returns the current SystemMeta. Missing or unreadable state yields the defaults.
func (m *MetaStore) Get(ctx context.Context) domain.SystemMeta {
	payload, err := m.slots.Get(ctx, domain.SlotSystemMeta)
	if err != nil {
		return m.defaults
	}

	var stored []domain.SystemMeta
	if err := json.Unmarshal(payload, &stored); err != nil {
		// older builds wrote a bare object
		var single domain.SystemMeta
		if err2 := json.Unmarshal(payload, &single); err2 != nil {
			m.logger.Warn("Discarding malformed system meta", zap.Error(err))
			return m.defaults
		}
		stored = []domain.SystemMeta{single}
	}
	if len(stored) == 0 {
		return m.defaults
	}
	return m.defaults.Overlay(stored[0])
}

// Defaults returns the values Get falls back to.
func (m *MetaStore) Defaults() domain.SystemMeta {
	return m.defaults
}

// Update applies fn to the current SystemMeta and persists the result.
func (m *MetaStore) Update(ctx context.Context, fn func(*domain.SystemMeta)) (domain.SystemMeta, error) {
	meta := m.Get(ctx)
	fn(&meta)

	payload, err := json.Marshal([]domain.SystemMeta{meta})
	if err != nil {
		return meta, fmt.Errorf("failed to encode system meta: %w", err)
	}
	if err := m.slots.Put(ctx, domain.SlotSystemMeta, payload); err != nil {
		return meta, fmt.Errorf("failed to save system meta: %w", err)
	}
	return meta, nil
}
