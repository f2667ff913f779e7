// Package realtime pushes events to users' live WebSocket connections.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/techagentng/photohire/models"
	"go.uber.org/zap"
)

// Hub is the in-process registry of live connections, keyed by user. A user
// may hold several connections at once.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
	log     *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes c and closes its send channel, which stops its write pump.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.UserID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

// Publish delivers event to every connection of userIDs on this instance.
func (h *Hub) Publish(ctx context.Context, userIDs []uint, event models.Event) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	h.Deliver(userIDs, frame)
	return nil
}

// Deliver queues an encoded frame on each matching connection. A connection
// whose buffer is full misses the frame.
func (h *Hub) Deliver(userIDs []uint, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range userIDs {
		for c := range h.clients[id] {
			select {
			case c.send <- frame:
			default:
				h.log.Warnw("dropping event for slow connection", "user_id", id, "client_id", c.ID)
			}
		}
	}
}

// Online reports how many connections userID has on this instance.
func (h *Hub) Online(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
