package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"doggydate-backend/internal/metrics"
	"doggydate-backend/internal/pubsub"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64

	// A fully \uXXXX-escaped text of MaxMessageLength characters fits,
	// surrogate pairs included.
	maxMessageSize = MaxMessageLength*12 + 512
)

// Real-time event types
const (
	EventJoinChat       = "join_chat"
	EventLeaveChat      = "leave_chat"
	EventSendMessage    = "send_message"
	EventJoinedChat     = "joined_chat"
	EventLeftChat       = "left_chat"
	EventReceiveMessage = "receive_message"
	EventError          = "error"
)

// WSMessage is the JSON envelope of every real-time event
type WSMessage struct {
	Type    string `json:"type"`
	ChatID  int64  `json:"chat_id,omitempty"`
	UserID  int64  `json:"usuario_id,omitempty"`
	Text    string `json:"texto,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Client is one real-time connection of an authenticated user
type Client struct {
	ID     string
	UserID int64

	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// Hub keeps the chat rooms of this instance. Broadcasts go through the
// broker so that members connected to other instances receive them too.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[int64]map[*Client]struct{}
	online  map[int64]int
	broker  pubsub.Broker
	closed  bool
}

// NewHub creates a hub and subscribes it to the broker
func NewHub(ctx context.Context, broker pubsub.Broker) (*Hub, error) {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[int64]map[*Client]struct{}),
		online:  make(map[int64]int),
		broker:  broker,
	}
	if err := broker.Subscribe(ctx, h.deliver); err != nil {
		return nil, fmt.Errorf("failed to subscribe hub: %w", err)
	}
	return h, nil
}

// NewClient wraps an upgraded connection
func (h *Hub) NewClient(conn *websocket.Conn, userID int64) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("hub is closed")
	}

	h.clients[c] = struct{}{}
	h.online[c.UserID]++
	metrics.OpenConnections.Inc()

	log.Info().Str("conn_id", c.ID).Int64("user_id", c.UserID).Msg("WebSocket connection registered")
	return nil
}

// Unregister removes a connection from the hub and from every room it joined
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	h.mu.Unlock()

	if removed {
		log.Info().Str("conn_id", c.ID).Int64("user_id", c.UserID).Msg("WebSocket connection unregistered")
	}
}

func (h *Hub) removeLocked(c *Client) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	for chatID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if h.online[c.UserID]--; h.online[c.UserID] <= 0 {
		delete(h.online, c.UserID)
	}
	c.closeSend()
	metrics.OpenConnections.Dec()
	return true
}

// Join subscribes the connection to a chat room. Callers authorize first.
func (h *Hub) Join(c *Client, chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[chatID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[chatID] = members
	}
	members[c] = struct{}{}
}

// Leave unsubscribes the connection from a chat room
func (h *Hub) Leave(c *Client, chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[chatID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// RoomSize returns the number of local connections in a room
func (h *Hub) RoomSize(chatID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// IsOnline reports whether the user has a live connection on this instance
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online[userID] > 0
}

// Broadcast publishes msg to every member of the chat room
func (h *Hub) Broadcast(ctx context.Context, chatID int64, msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := h.broker.Publish(ctx, chatID, data); err != nil {
		return fmt.Errorf("failed to publish to room %d: %w", chatID, err)
	}
	return nil
}

// deliver hands a room payload to the local members. Members whose buffer
// is full are disconnected.
func (h *Hub) deliver(chatID int64, payload []byte) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[chatID]))
	for c := range h.rooms[chatID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, c := range members {
		if c.enqueue(payload) {
			metrics.BroadcastDeliveries.WithLabelValues("delivered").Inc()
			continue
		}
		metrics.BroadcastDeliveries.WithLabelValues("dropped").Inc()
		slow = append(slow, c)
	}

	for _, c := range slow {
		log.Warn().Str("conn_id", c.ID).Int64("chat_id", chatID).Msg("Dropping slow WebSocket client")
		h.Unregister(c)
	}
}

// Close disconnects every client and refuses new registrations
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// Send queues msg for this connection only
func (c *Client) Send(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.ID).Msg("Failed to marshal message")
		return
	}
	if !c.enqueue(data) {
		c.hub.Unregister(c)
	}
}

// SendError queues an error event for this connection
func (c *Client) SendError(message string) {
	c.Send(WSMessage{Type: EventError, Message: message})
}

// enqueue never blocks; it reports false when the buffer is full or the
// connection is gone
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads events until the connection fails and passes each one to
// handle. It unregisters the client on return.
func (c *Client) ReadPump(ctx context.Context, handle func(context.Context, *Client, WSMessage)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn_id", c.ID).Msg("WebSocket read error")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("conn_id", c.ID).Msg("Failed to parse WebSocket message")
			c.SendError("invalid message format")
			continue
		}
		handle(ctx, c, msg)
	}
}

// WritePump is the only writer of the connection. It sends queued events
// and keepalive pings until the send channel is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("conn_id", c.ID).Msg("Failed to write WebSocket message")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
