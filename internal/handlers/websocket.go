package handlers

import (
	"context"
	"net/http"
	"slices"

	"doggydate-backend/internal/metrics"
	"doggydate-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub         *services.Hub
	userService *services.UserService
	chatService *services.ChatService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. Browser connections
// are accepted only from allowedOrigins; "*" accepts any origin.
func NewWebSocketHandler(
	hub *services.Hub,
	userService *services.UserService,
	chatService *services.ChatService,
	allowedOrigins []string,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := h.hub.NewClient(conn, userID)
	if err := h.hub.Register(client); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to register WebSocket connection")
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump(r.Context(), h.handleMessage)
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, c *services.Client, msg services.WSMessage) {
	switch msg.Type {
	case services.EventJoinChat:
		h.handleJoinChat(ctx, c, msg)
	case services.EventLeaveChat:
		h.hub.Leave(c, msg.ChatID)
		c.Send(services.WSMessage{Type: services.EventLeftChat, ChatID: msg.ChatID})
	case services.EventSendMessage:
		h.handleSendMessage(ctx, c, msg)
	default:
		c.SendError("unknown message type")
	}
}

// handleJoinChat adds the connection to the chat room after checking that
// the user takes part in the chat
func (h *WebSocketHandler) handleJoinChat(ctx context.Context, c *services.Client, msg services.WSMessage) {
	if err := h.chatService.Authorize(ctx, msg.ChatID, c.UserID); err != nil {
		log.Warn().Err(err).Str("conn_id", c.ID).Int64("user_id", c.UserID).Int64("chat_id", msg.ChatID).Msg("Join chat rejected")
		c.SendError(clientErrorMessage(err))
		return
	}

	h.hub.Join(c, msg.ChatID)
	c.Send(services.WSMessage{Type: services.EventJoinedChat, ChatID: msg.ChatID})

	log.Debug().
		Str("conn_id", c.ID).
		Int64("user_id", c.UserID).
		Int64("chat_id", msg.ChatID).
		Int("room_size", h.hub.RoomSize(msg.ChatID)).
		Msg("Joined chat")
}

// handleSendMessage stores the message as the connection's user. The
// usuario_id of the payload, when present, must be that user.
func (h *WebSocketHandler) handleSendMessage(ctx context.Context, c *services.Client, msg services.WSMessage) {
	if msg.UserID != 0 && msg.UserID != c.UserID {
		log.Warn().Str("conn_id", c.ID).Int64("user_id", c.UserID).Int64("claimed_user_id", msg.UserID).Msg("Message sender mismatch")
		c.SendError("usuario_id does not match the authenticated user")
		return
	}

	if _, err := h.chatService.SendMessage(ctx, msg.ChatID, c.UserID, msg.Text); err != nil {
		log.Warn().Err(err).Str("conn_id", c.ID).Int64("user_id", c.UserID).Int64("chat_id", msg.ChatID).Msg("Failed to send message")
		c.SendError(clientErrorMessage(err))
		return
	}
	metrics.MessagesSentTotal.WithLabelValues("websocket").Inc()
}

func clientErrorMessage(err error) string {
	if statusFromError(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
