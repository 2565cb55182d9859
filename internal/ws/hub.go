// Package ws pushes match updates to connected seekers and shop owners.
package ws

import (
	"context"
	"sync"

	"parttime-match/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type topicMessage struct {
	topic   string
	payload []byte
}

// Hub fans messages out to clients by topic. Each client listens on its own
// user topic; a slow client whose buffer is full is disconnected.
type Hub struct {
	clients    map[*Client]bool
	topics     map[string]map[*Client]struct{}
	publish    chan topicMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		topics:     make(map[string]map[*Client]struct{}),
		publish:    make(chan topicMessage, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger.OrNop(log).Named("ws"),
	}
}

func UserTopic(id uuid.UUID) string {
	return "user:" + id.String()
}

// Run serves register, unregister and publish requests until ctx ends, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			for _, t := range client.topics {
				if h.topics[t] == nil {
					h.topics[t] = make(map[*Client]struct{})
				}
				h.topics[t][client] = struct{}{}
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("client connected", zap.Int("total_clients", total))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.drop(client)
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("client disconnected", zap.Int("total_clients", total))

		case msg := <-h.publish:
			h.mutex.Lock()
			delivered := 0
			for client := range h.topics[msg.topic] {
				select {
				case client.send <- msg.payload:
					delivered++
				default:
					h.drop(client)
				}
			}
			h.mutex.Unlock()
			h.logger.Debug("topic publish", zap.String("topic", msg.topic), zap.Int("clients", delivered))
		}
	}
}

// drop must be called with the mutex held.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for _, t := range c.topics {
		delete(h.topics[t], c)
		if len(h.topics[t]) == 0 {
			delete(h.topics, t)
		}
	}
	close(c.send)
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// Publish never blocks; messages are dropped when the hub is backed up.
func (h *Hub) Publish(topic string, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.publish <- topicMessage{topic: topic, payload: payload}:
	default:
		h.logger.Warn("publish dropped", zap.String("topic", topic), zap.String("reason", "buffer_full"))
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
