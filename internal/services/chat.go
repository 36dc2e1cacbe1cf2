package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"doggydate-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// MaxMessageLength is the longest accepted message text, in characters
const MaxMessageLength = 2000

// Rooms fans events out to the live connections of a chat
type Rooms interface {
	Broadcast(ctx context.Context, chatID int64, msg WSMessage) error
	IsOnline(userID int64) bool
}

// ChatService handles chat listing, message history and message delivery
type ChatService struct {
	repo     ChatRepository
	rooms    Rooms
	notifier Notifier
}

// NewChatService creates a new chat service
func NewChatService(repo ChatRepository, rooms Rooms, notifier Notifier) *ChatService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ChatService{
		repo:     repo,
		rooms:    rooms,
		notifier: notifier,
	}
}

// GetChatsForUser lists the user's chats, most recently active first
func (s *ChatService) GetChatsForUser(ctx context.Context, userID int64) ([]*models.ChatSummary, error) {
	if userID <= 0 {
		return nil, validationError("usuario_id is required")
	}
	return s.repo.ListForUser(ctx, userID)
}

// VerifyParticipant reports whether userID takes part in the chat. A missing
// chat is reported as false.
func (s *ChatService) VerifyParticipant(ctx context.Context, chatID, userID int64) (bool, error) {
	err := s.Authorize(ctx, chatID, userID)
	switch {
	case err == nil:
		return true, nil
	case isNotFoundOrForbidden(err):
		return false, nil
	default:
		return false, err
	}
}

// Authorize returns ErrChatNotFound when the chat does not exist and
// ErrNotParticipant when userID is not one of its two users
func (s *ChatService) Authorize(ctx context.Context, chatID, userID int64) error {
	_, err := s.authorizedChat(ctx, s.repo, chatID, userID)
	return err
}

func (s *ChatService) authorizedChat(ctx context.Context, repo ChatRepository, chatID, userID int64) (*models.Chat, error) {
	if chatID <= 0 || userID <= 0 {
		return nil, validationError("chat id and usuario_id are required")
	}
	chat, err := repo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return chat, nil
}

// ListMessages returns the chat history oldest first and then marks the
// messages received by userID as read. The returned messages carry the read
// state from before the call.
func (s *ChatService) ListMessages(ctx context.Context, chatID, userID int64) ([]*models.Message, error) {
	var messages []*models.Message
	err := s.repo.Transaction(ctx, func(repo ChatRepository) error {
		if _, err := s.authorizedChat(ctx, repo, chatID, userID); err != nil {
			return err
		}
		var err error
		messages, err = repo.ListMessages(ctx, chatID)
		if err != nil {
			return err
		}
		marked, err := repo.MarkRead(ctx, chatID, userID)
		if err != nil {
			return err
		}
		if marked > 0 {
			log.Debug().Int64("chat_id", chatID).Int64("user_id", userID).Int64("count", marked).Msg("Messages marked read")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage stores a message from senderID and broadcasts it to the chat
// room. The text is stored as sent; only the length checks ignore
// surrounding whitespace. Broadcast failures are logged; the stored message is still returned.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID int64, text string) (*models.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, validationError("texto is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return nil, validationError("texto exceeds %d characters", MaxMessageLength)
	}

	var (
		chat *models.Chat
		msg  *models.Message
	)
	err := s.repo.Transaction(ctx, func(repo ChatRepository) error {
		var err error
		chat, err = s.authorizedChat(ctx, repo, chatID, senderID)
		if err != nil {
			return err
		}
		msg, err = repo.CreateMessage(ctx, chatID, senderID, text)
		if err != nil {
			return err
		}
		return repo.TouchLastMessage(ctx, chatID, msg.SentAt)
	})
	if err != nil {
		return nil, err
	}

	if s.rooms != nil {
		event := WSMessage{Type: EventReceiveMessage, ChatID: chatID, Data: msg}
		if err := s.rooms.Broadcast(ctx, chatID, event); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Int64("message_id", msg.ID).Msg("Failed to broadcast message")
		}
	}

	recipientID := chat.OtherParticipant(senderID)
	if s.rooms == nil || !s.rooms.IsOnline(recipientID) {
		notifyAsync(s.notifier, recipientID, Notification{
			Title: msg.SenderName,
			Body:  previewText(msg.Text),
			Data:  map[string]any{"chat_id": chatID},
		})
	}

	return msg, nil
}

// DeleteChat deletes one chat and its messages
func (s *ChatService) DeleteChat(ctx context.Context, chatID, userID int64) error {
	_, err := s.DeleteChats(ctx, []int64{chatID}, userID)
	return err
}

// DeleteChats deletes the chats and their messages. Either every chat is
// deleted or none: all ids must exist and include userID as participant.
func (s *ChatService) DeleteChats(ctx context.Context, chatIDs []int64, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, validationError("usuario_id is required")
	}
	ids := uniqueIDs(chatIDs)
	if len(ids) == 0 {
		return 0, validationError("chatIds must be a non-empty list")
	}
	for _, id := range ids {
		if id <= 0 {
			return 0, validationError("invalid chat id %d", id)
		}
	}

	var deleted int64
	err := s.repo.Transaction(ctx, func(repo ChatRepository) error {
		chats, err := repo.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(chats) != len(ids) {
			return ErrChatNotFound
		}
		for _, chat := range chats {
			if !chat.HasParticipant(userID) {
				return ErrNotParticipant
			}
		}
		deleted, err = repo.DeleteWithMessages(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int64("user_id", userID).Int64("count", deleted).Msg("Chats deleted")
	return deleted, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func previewText(text string) string {
	const limit = 120
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}
