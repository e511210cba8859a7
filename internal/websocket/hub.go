// Package websocket pushes change and feedback notifications to connected
// browser sessions and accepts their visibility pings.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aeworks/ops-api/internal/domain"
	"go.uber.org/zap"
)

// Message types sent to and received from clients.
const (
	TypeChange     = "change"
	TypeFeedback   = "feedback"
	TypeVisibility = "visibility"
	TypeSync       = "sync"
)

// Message is the envelope of every frame.
type Message struct {
	Type        string             `json:"type"`
	Dataset     string             `json:"dataset,omitempty"`
	ProjectCode string             `json:"projectCode,omitempty"`
	Result      *domain.SyncResult `json:"result,omitempty"`
}

// VisibilityFunc runs the sync a client asks for when it becomes visible.
type VisibilityFunc func(trigger string) domain.SyncResult

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	onVisible VisibilityFunc
	logger    *zap.Logger
}

// NewHub creates a new Hub instance. onVisible may be nil, in which case
// visibility pings are ignored.
func NewHub(onVisible VisibilityFunc, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		onVisible:  onVisible,
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				h.logger.Debug("websocket client disconnected", zap.String("client_id", client.ID))
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. Clients whose buffer is full miss
// the message; it never blocks the caller.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client buffer full, dropping message", zap.String("client_id", c.ID))
		}
	}
}

// OnChange forwards a store change event. Subscribe it on the events bus.
func (h *Hub) OnChange(ev domain.ChangeEvent) {
	h.Broadcast(Message{Type: TypeChange, Dataset: ev.Dataset})
}

// NotifyFeedback announces newly ingested feedback for a project.
func (h *Hub) NotifyFeedback(projectCode string) {
	h.Broadcast(Message{Type: TypeFeedback, ProjectCode: projectCode})
}

func (h *Hub) sendTo(id string, msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	if !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// visible runs the visibility sync off the read loop and answers the
// requesting client with the result.
func (h *Hub) visible(clientID string) {
	if h.onVisible == nil {
		return
	}
	go func() {
		res := h.onVisible(domain.TriggerVisibility)
		h.sendTo(clientID, Message{Type: TypeSync, Result: &res})
	}()
}
