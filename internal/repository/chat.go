package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"doggydate-backend/internal/models"
	"doggydate-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const chatColumns = `id, usuario1_id, usuario2_id, fecha_creacion, ultimo_mensaje`

// ChatRepository handles database operations for chats and messages
type ChatRepository struct {
	db DBTX
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction
func (r *ChatRepository) Transaction(ctx context.Context, fn func(services.ChatRepository) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&ChatRepository{db: tx})
	})
}

// GetByID retrieves a chat by ID
func (r *ChatRepository) GetByID(ctx context.Context, chatID int64) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.QueryRow(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, chatID).Scan(
		&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.LastMessageAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

// LockByIDs returns the chats among chatIDs that exist, locked until the
// surrounding transaction ends
func (r *ChatRepository) LockByIDs(ctx context.Context, chatIDs []int64) ([]*models.Chat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+chatColumns+` FROM chats
		WHERE id = ANY($1::bigint[])
		ORDER BY id
		FOR UPDATE
	`, chatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.LastMessageAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, &chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}
	return chats, nil
}

// ListForUser returns the user's chats with the partner profile, the first
// pet of the partner liked by the user, the latest message and the unread
// count, most recently active first
func (r *ChatRepository) ListForUser(ctx context.Context, userID int64) ([]*models.ChatSummary, error) {
	query := `
		SELECT c.id, c.usuario1_id, c.usuario2_id, c.fecha_creacion, c.ultimo_mensaje,
		       o.id, o.nombre, o.apellidos, o.imagen_perfil,
		       mp.id, mp.nombre, mp.imagen,
		       lm.id, lm.usuario_id, lm.texto, lm.fecha_envio, lm.leido,
		       (SELECT COUNT(*) FROM mensajes u
		         WHERE u.chat_id = c.id AND u.usuario_id != $1 AND NOT u.leido)
		FROM chats c
		JOIN usuarios o
		  ON o.id = CASE WHEN c.usuario1_id = $1 THEN c.usuario2_id ELSE c.usuario1_id END
		LEFT JOIN LATERAL (
			SELECT m.id, m.nombre, m.imagenes[1] AS imagen
			FROM mascotas m
			JOIN matches mt ON mt.mascota_id = m.id
			WHERE mt.usuario_id = $1 AND m.usuario_id = o.id
			ORDER BY mt.fecha_match, m.id
			LIMIT 1
		) mp ON true
		LEFT JOIN LATERAL (
			SELECT id, usuario_id, texto, fecha_envio, leido
			FROM mensajes
			WHERE chat_id = c.id
			ORDER BY fecha_envio DESC, id DESC
			LIMIT 1
		) lm ON true
		WHERE c.usuario1_id = $1 OR c.usuario2_id = $1
		ORDER BY c.ultimo_mensaje DESC NULLS LAST, c.id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	summaries := []*models.ChatSummary{}
	for rows.Next() {
		var (
			s       models.ChatSummary
			other   models.UserPublic
			petID   *int64
			petName *string
			petImg  *string
			msgID   *int64
			msgFrom *int64
			msgText *string
			msgAt   *time.Time
			msgRead *bool
			unread  int64
		)
		err := rows.Scan(
			&s.ID, &s.User1ID, &s.User2ID, &s.CreatedAt, &s.LastMessageAt,
			&other.ID, &other.Name, &other.LastName, &other.ProfileImage,
			&petID, &petName, &petImg,
			&msgID, &msgFrom, &msgText, &msgAt, &msgRead,
			&unread,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat summary: %w", err)
		}

		s.OtherUserID = other.ID
		s.OtherUser = &other
		if petID != nil {
			s.MatchedPet = &models.PetPreview{ID: *petID, Name: *petName, Image: petImg}
		}
		if msgID != nil {
			s.LastMessage = &models.Message{
				ID:       *msgID,
				ChatID:   s.ID,
				SenderID: *msgFrom,
				Text:     *msgText,
				SentAt:   *msgAt,
				Read:     *msgRead,
			}
		}
		s.UnreadCount = int(unread)
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}
	return summaries, nil
}

// ListMessages returns the chat's messages oldest first with sender names
func (r *ChatRepository) ListMessages(ctx context.Context, chatID int64) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.chat_id, m.usuario_id, u.nombre, m.texto, m.fecha_envio, m.leido
		FROM mensajes m
		JOIN usuarios u ON m.usuario_id = u.id
		WHERE m.chat_id = $1
		ORDER BY m.fecha_envio ASC, m.id ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.SenderName, &msg.Text, &msg.SentAt, &msg.Read); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// MarkRead marks every unread message not sent by readerID as read
func (r *ChatRepository) MarkRead(ctx context.Context, chatID, readerID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE mensajes SET leido = true
		WHERE chat_id = $1 AND usuario_id != $2 AND leido = false
	`, chatID, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CreateMessage inserts an unread message and returns it with the sender name
func (r *ChatRepository) CreateMessage(ctx context.Context, chatID, senderID int64, text string) (*models.Message, error) {
	var msg models.Message
	err := r.db.QueryRow(ctx, `
		INSERT INTO mensajes (chat_id, usuario_id, texto, fecha_envio, leido)
		VALUES ($1, $2, $3, NOW(), false)
		RETURNING id, chat_id, usuario_id,
		          (SELECT nombre FROM usuarios WHERE id = $2),
		          texto, fecha_envio, leido
	`, chatID, senderID, text).Scan(
		&msg.ID, &msg.ChatID, &msg.SenderID, &msg.SenderName, &msg.Text, &msg.SentAt, &msg.Read,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &msg, nil
}

// TouchLastMessage moves the chat's last activity forward to at
func (r *ChatRepository) TouchLastMessage(ctx context.Context, chatID int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE chats SET ultimo_mensaje = GREATEST(COALESCE(ultimo_mensaje, $2), $2)
		WHERE id = $1
	`, chatID, at)
	if err != nil {
		return fmt.Errorf("failed to update last message time: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrChatNotFound
	}
	return nil
}

// DeleteWithMessages deletes the chats' messages and then the chats
func (r *ChatRepository) DeleteWithMessages(ctx context.Context, chatIDs []int64) (int64, error) {
	var deleted int64
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM mensajes WHERE chat_id = ANY($1::bigint[])`, chatIDs); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM chats WHERE id = ANY($1::bigint[])`, chatIDs)
		if err != nil {
			return fmt.Errorf("failed to delete chats: %w", err)
		}
		deleted = tag.RowsAffected()
		return nil
	})
	return deleted, err
}
