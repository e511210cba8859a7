package store

import (
	"context"
	"sync"

	"github.com/aeworks/ops-api/internal/repository"
)

// MemorySlots is an in-process SlotStore.
type MemorySlots struct {
	mu    sync.RWMutex
	slots map[string][]byte
	// FailWrites makes every Put return this error
	FailWrites error
}

// NewMemorySlots creates an empty MemorySlots
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string][]byte)}
}

func (m *MemorySlots) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.slots[key]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	return append([]byte(nil), payload...), nil
}

func (m *MemorySlots) Put(_ context.Context, key string, payload []byte) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), payload...)
	return nil
}
