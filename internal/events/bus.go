// Package events fans change notifications out to any number of subscribers.
package events

import (
	"sync"

	"github.com/aeworks/ops-api/internal/domain"
)

// Handler receives change events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(domain.ChangeEvent)

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(domain.ChangeEvent)
}

// Bus is an observer registry. There is no queue and no back-pressure:
// Publish calls every current subscriber in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

// NewBus creates an empty Bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every subscriber.
func (b *Bus) Publish(ev domain.ChangeEvent) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Count returns the number of subscribers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}
