// Package store is the local record store: one JSON slot per dataset,
// fail-soft reads, de-duplicating writes and change notifications.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/aeworks/ops-api/internal/events"
	"github.com/aeworks/ops-api/internal/merge"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownDataset is returned for writes to a slot that does not hold records.
var ErrUnknownDataset = errors.New("unknown dataset")

// SlotStore is the raw persistence behind the store.
// repository.SlotRepository and MemorySlots implement it.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// LocalStore reads and writes datasets. Writes are read-modify-write free:
// Save replaces the whole slot, and concurrent savers resolve as last save wins.
type LocalStore struct {
	slots  SlotStore
	bus    events.Publisher
	logger *zap.Logger
	now    func() time.Time
}

// NewLocalStore creates a LocalStore
func NewLocalStore(slots SlotStore, bus events.Publisher, logger *zap.Logger) *LocalStore {
	return &LocalStore{
		slots:  slots,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source used for updatedAt stamps.
func (s *LocalStore) WithClock(now func() time.Time) *LocalStore {
	s.now = now
	return s
}

// Get returns the records of dataset. A missing slot or a payload that is not
// a JSON array of objects reads as an empty dataset.
func (s *LocalStore) Get(ctx context.Context, dataset string) []domain.Record {
	payload, err := s.slots.Get(ctx, dataset)
	if err != nil {
		s.logger.Debug("Dataset slot unavailable, treating as empty",
			zap.String("dataset", dataset),
			zap.Error(err),
		)
		return []domain.Record{}
	}

	var records []domain.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		s.logger.Warn("Discarding malformed dataset slot",
			zap.String("dataset", dataset),
			zap.Error(err),
		)
		return []domain.Record{}
	}

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Save persists records as the full content of dataset. Records without an id
// get one and records without updatedAt are stamped with the current time;
// both are written into the given maps. Records sharing a stable key are
// collapsed to the most recently updated. On success every subscriber is
// notified with the dataset name.
func (s *LocalStore) Save(ctx context.Context, dataset string, records []domain.Record) error {
	if !domain.IsRecordSlot(dataset) {
		return fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}

	now := s.now()
	prepared := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.ID() == "" {
			r[domain.FieldID] = newID(now)
		}
		if !r.HasUpdatedAt() {
			r.Touch(now)
		}
		prepared = append(prepared, r)
	}

	deduped := merge.Dedupe(dataset, prepared)
	if dropped := len(prepared) - len(deduped); dropped > 0 {
		s.logger.Info("Collapsed records sharing a stable key",
			zap.String("dataset", dataset),
			zap.Int("dropped", dropped),
		)
	}

	payload, err := json.Marshal(deduped)
	if err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", dataset, err)
	}
	if err := s.slots.Put(ctx, dataset, payload); err != nil {
		s.logger.Error("Failed to save dataset",
			zap.String("dataset", dataset),
			zap.Error(err),
		)
		return err
	}

	s.bus.Publish(domain.ChangeEvent{Dataset: dataset})
	return nil
}

// Snapshot returns every synced dataset.
func (s *LocalStore) Snapshot(ctx context.Context) map[string][]domain.Record {
	out := make(map[string][]domain.Record, len(domain.Datasets))
	for _, d := range domain.Datasets {
		out[d] = s.Get(ctx, d)
	}
	return out
}

// GetLogo returns the stored logo data URL, "" when unset.
func (s *LocalStore) GetLogo(ctx context.Context) string {
	payload, err := s.slots.Get(ctx, domain.SlotLogo)
	if err != nil {
		return ""
	}
	var logo string
	if err := json.Unmarshal(payload, &logo); err != nil {
		return ""
	}
	return logo
}

// SaveLogo stores the logo data URL.
func (s *LocalStore) SaveLogo(ctx context.Context, dataURL string) error {
	payload, err := json.Marshal(dataURL)
	if err != nil {
		return fmt.Errorf("failed to encode logo: %w", err)
	}
	if err := s.slots.Put(ctx, domain.SlotLogo, payload); err != nil {
		return err
	}
	s.bus.Publish(domain.ChangeEvent{Dataset: domain.SlotLogo})
	return nil
}

// newID prefers a random UUID and falls back to a time plus random string
// when the system entropy source fails.
func newID(now time.Time) string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + strconv.FormatUint(rand.Uint64(), 36)
}
