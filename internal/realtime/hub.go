// Package realtime fans message-board activity out to connected
// browsers over WebSocket, one room per discussion channel.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains channel -> set of connections and broadcasts events.
// With Redis configured, broadcasts also reach other instances.
type Hub struct {
	// channel name -> map[clientID]*Client
	rooms    map[string]map[string]*Client
	subs     map[string]func() // cancel Redis subscription per channel
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    Publisher
	redisSub Subscriber
}

// Publisher publishes channel events for other instances.
type Publisher interface {
	PublishChannelEvent(channel, event string, payload []byte) error
}

// Subscriber subscribes to a channel and invokes handler for incoming
// events from other instances.
type Subscriber interface {
	SubscribeChannel(channel string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a WebSocket hub. pub and sub may be nil when Redis is
// disabled; the hub then broadcasts locally only.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		rooms:    make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		logger:   logger,
		redis:    pub,
		redisSub: sub,
	}
}

// Register adds a client to its channel room and starts the Redis
// subscription when it is the first local listener.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.Channel] == nil {
		h.rooms[c.Channel] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeChannel(c.Channel, func(event string, payload []byte) {
				h.Broadcast(c.Channel, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.Channel] = cancel
			}
		}
	}
	h.rooms[c.Channel][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined channel", zap.String("client_id", c.ID), zap.String("channel", c.Channel))
}

// Unregister removes a client and cancels the Redis subscription when
// the last local listener leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.Channel]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.Channel)
			if cancel, ok := h.subs[c.Channel]; ok {
				cancel()
				delete(h.subs, c.Channel)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left channel", zap.String("client_id", c.ID), zap.String("channel", c.Channel))
}

// Broadcast sends an event to all local clients in a channel.
func (h *Hub) Broadcast(channel, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	// Copy the room under the lock; Register and Unregister mutate the
	// same inner map concurrently.
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[channel]))
	for _, c := range h.rooms[channel] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish delivers an event to every instance's clients in a channel.
// With Redis the event goes through pub/sub so each instance (this one
// included) broadcasts exactly once; without Redis it broadcasts
// locally.
func (h *Hub) Publish(channel, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishChannelEvent(channel, event, data)
		return
	}
	h.Broadcast(channel, event, json.RawMessage(data))
}

// ListenerCount returns the number of local clients in a channel.
func (h *Hub) ListenerCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[channel])
}
