package handlers

import (
	"net/http"

	"doggydate-backend/internal/metrics"
	"doggydate-backend/internal/services"

	"github.com/rs/zerolog/hlog"
)

// ChatHandler handles chat and message HTTP requests
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// DeleteChatsRequest is the body of a bulk chat deletion
type DeleteChatsRequest struct {
	ChatIDs []int64 `json:"chatIds"`
}

// DeleteChatsResponse reports how many chats were removed
type DeleteChatsResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

// SendMessageRequest is the body of a new message
type SendMessageRequest struct {
	UserID int64  `json:"usuario_id"`
	Text   string `json:"texto"`
}

// ListChats handles GET /chats?usuario_id=
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !requireSelf(w, r, userID, ok) {
		return
	}

	chats, err := h.chatService.GetChatsForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list chats")
		return
	}

	respondJSON(w, http.StatusOK, chats)
}

// DeleteChat handles DELETE /chats/{chatId}?usuario_id=
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !requireSelf(w, r, userID, ok) {
		return
	}
	chatID, ok := urlID(r, "chatId")
	if !ok {
		respondError(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), chatID, userID); err != nil {
		respondServiceError(w, r, err, "Failed to delete chat")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", userID).Int64("chat_id", chatID).Msg("Chat deleted")
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// DeleteChats handles DELETE /chats?usuario_id= with {chatIds: [...]}
func (h *ChatHandler) DeleteChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !requireSelf(w, r, userID, ok) {
		return
	}
	var req DeleteChatsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deleted, err := h.chatService.DeleteChats(r.Context(), req.ChatIDs, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to delete chats")
		return
	}

	respondJSON(w, http.StatusOK, DeleteChatsResponse{Success: true, Deleted: deleted})
}

// ListMessages handles GET /chats/{chatId}/mensajes?usuario_id=
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !requireSelf(w, r, userID, ok) {
		return
	}
	chatID, ok := urlID(r, "chatId")
	if !ok {
		respondError(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), chatID, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list messages")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// SendMessage handles POST /chats/{chatId}/mensajes
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := urlID(r, "chatId")
	if !ok {
		respondError(w, "Invalid chat id", http.StatusBadRequest)
		return
	}
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !requireSelf(w, r, req.UserID, req.UserID > 0) {
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), chatID, req.UserID, req.Text)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send message")
		return
	}
	metrics.MessagesSentTotal.WithLabelValues("http").Inc()

	respondJSON(w, http.StatusCreated, msg)
}
