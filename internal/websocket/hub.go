package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Push is the frame written to browsers.
type Push struct {
	Type      string                  `json:"type"`
	Kind      entity.NotificationType `json:"kind"`
	Message   string                  `json:"message"`
	Timestamp time.Time               `json:"timestamp"`
}

// relay is what travels between instances over Redis. A nil Target
// addresses every connected recipient of the listed classes.
type relay struct {
	Origin  string                 `json:"origin"`
	Target  *entity.Recipient      `json:"target,omitempty"`
	Classes []entity.RecipientType `json:"classes,omitempty"`
	Message json.RawMessage        `json:"message"`
}

type Hub struct {
	// Registered clients, several per recipient for multi-device sessions.
	clients map[entity.Recipient][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// instance tags relayed messages so an instance skips its own publishes.
	instance string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[entity.Recipient][]*Client),
		rdb:        rdb,
		instance:   uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run owns the client map until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Recipient] = append(h.clients[client.Recipient], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"recipient": client.Recipient})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.Recipient]
			for i, c := range clients {
				if c == client {
					h.clients[client.Recipient] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.Recipient]) == 0 {
				delete(h.clients, client.Recipient)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for r, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, r)
	}
}

// Connected returns the number of live connections for recipient.
func (h *Hub) Connected(recipient entity.Recipient) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[recipient])
}

// SendTo pushes to the recipient's connections here and on every other instance.
func (h *Hub) SendTo(ctx context.Context, recipient entity.Recipient, push Push) {
	data, err := encodePush(push)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode push", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(recipient, data)
	h.publish(ctx, relay{Origin: h.instance, Target: &recipient, Message: data})
}

// BroadcastTo pushes to every connection whose recipient class is listed.
func (h *Hub) BroadcastTo(ctx context.Context, classes []entity.RecipientType, push Push) {
	data, err := encodePush(push)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode push", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverClasses(classes, data)
	h.publish(ctx, relay{Origin: h.instance, Classes: classes, Message: data})
}

func encodePush(push Push) ([]byte, error) {
	if push.Type == "" {
		push.Type = "notification"
	}
	return json.Marshal(push)
}

func (h *Hub) deliverLocal(recipient entity.Recipient, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[recipient] {
		h.offer(client, data)
	}
}

func (h *Hub) deliverClasses(classes []entity.RecipientType, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for recipient, clients := range h.clients {
		if !containsClass(classes, recipient.Type) {
			continue
		}
		for _, client := range clients {
			h.offer(client, data)
		}
	}
}

// offer never blocks. A slow client misses the push and catches up on its next fetch.
func (h *Hub) offer(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"recipient": client.Recipient})
	}
}

func containsClass(classes []entity.RecipientType, t entity.RecipientType) bool {
	for _, c := range classes {
		if c == t {
			return true
		}
	}
	return false
}

func (h *Hub) publish(ctx context.Context, msg relay) {
	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleRelay([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleRelay(raw []byte) {
	var msg relay
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if msg.Origin == h.instance {
		return
	}
	if msg.Target != nil {
		h.deliverLocal(*msg.Target, msg.Message)
		return
	}
	h.deliverClasses(msg.Classes, msg.Message)
}
