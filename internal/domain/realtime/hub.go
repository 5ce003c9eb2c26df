package realtime

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// tenantChannelPrefix scopes Redis Pub/Sub channels per tenant so one venue's
// calendar updates never reach another venue's clients
const tenantChannelPrefix = "calendar:tenant:"

var (
	wsConnectionsGauge   = expvar.NewInt("websocket_connections")
	wsEventsSentTotal    = expvar.NewInt("websocket_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("websocket_events_dropped_total")
)

// Event is a calendar update pushed to connected clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Connection represents one WebSocket client
type Connection struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Conn     *websocket.Conn
	Send     chan []byte
}

// Hub fans calendar events out to WebSocket clients. Events travel through
// Redis Pub/Sub so every server instance delivers to its own connections.
type Hub struct {
	// Local connections (this server instance only), grouped by tenant
	connections map[uuid.UUID]map[*Connection]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. A nil Redis client degrades to single-instance local
// delivery.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
	}

	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, tenantChannelPrefix+"*")
	}

	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.TenantID] == nil {
				h.connections[conn.TenantID] = make(map[*Connection]bool)
			}
			h.connections[conn.TenantID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("user_id", conn.UserID.String()).Msg("calendar client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.TenantID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.TenantID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("calendar client disconnected")
		}
	}
}

// Close stops the hub and its Redis subscription
func (h *Hub) Close() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// PublishBookingEvent broadcasts a booking mutation to all of the tenant's
// connected clients across all server instances
func (h *Hub) PublishBookingEvent(ctx context.Context, tenantID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal calendar event")
		return
	}

	if h.redis != nil {
		channel := tenantChannelPrefix + tenantID.String()
		if err := h.redis.Publish(ctx, channel, data).Err(); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("redis publish failed")
			// Fallback: at least this instance's clients get the update
			h.broadcastLocal(tenantID, data)
		}
		return
	}

	h.broadcastLocal(tenantID, data)
}

// runRedisSubscriber delivers Pub/Sub messages to local connections
func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(msg.Channel) <= len(tenantChannelPrefix) ||
				msg.Channel[:len(tenantChannelPrefix)] != tenantChannelPrefix {
				continue
			}
			tenantID, err := uuid.Parse(msg.Channel[len(tenantChannelPrefix):])
			if err != nil {
				continue
			}
			h.broadcastLocal(tenantID, []byte(msg.Payload))
		}
	}
}

// broadcastLocal sends to clients connected to THIS server
func (h *Hub) broadcastLocal(tenantID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[tenantID] {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			// Buffer full, skip this message
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("user_id", conn.UserID.String()).Msg("websocket send buffer full")
		}
	}
}

func (h *Hub) connectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, conns := range h.connections {
		n += len(conns)
	}
	return n
}
