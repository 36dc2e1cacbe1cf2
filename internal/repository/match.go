package repository

import (
	"context"
	"errors"
	"fmt"

	"doggydate-backend/internal/models"
	"doggydate-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pairLockSpace namespaces the advisory locks taken for user pairs
const pairLockSpace = 0x646f67

// MatchRepository handles database operations for likes, rejects and the
// chats opened by matches
type MatchRepository struct {
	db DBTX
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction
func (r *MatchRepository) Transaction(ctx context.Context, fn func(services.MatchRepository) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&MatchRepository{db: tx})
	})
}

// UserExists checks if a user exists
func (r *MatchRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM usuarios WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// GetPetOwner returns the id of the user owning the pet
func (r *MatchRepository) GetPetOwner(ctx context.Context, petID int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRow(ctx, `SELECT usuario_id FROM mascotas WHERE id = $1`, petID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, services.ErrPetNotFound
		}
		return 0, fmt.Errorf("failed to get pet owner: %w", err)
	}
	return ownerID, nil
}

// LockPair takes a transaction-scoped advisory lock on the normalized pair.
// Outside a transaction the lock would be released immediately.
func (r *MatchRepository) LockPair(ctx context.Context, userA, userB int64) error {
	low, high := models.NormalizePair(userA, userB)
	_, err := r.db.Exec(ctx,
		`SELECT pg_advisory_xact_lock($1, hashtext($2::text))`,
		pairLockSpace, fmt.Sprintf("%d:%d", low, high),
	)
	if err != nil {
		return fmt.Errorf("failed to lock user pair: %w", err)
	}
	return nil
}

// CreateLike records a like; it reports false when the like already existed
func (r *MatchRepository) CreateLike(ctx context.Context, userID, petID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO matches (usuario_id, mascota_id, fecha_match)
		VALUES ($1, $2, NOW())
		ON CONFLICT (usuario_id, mascota_id) DO NOTHING
	`, userID, petID)
	if err != nil {
		return false, fmt.Errorf("failed to create like: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// HasLikeOnPetsOf reports whether likerID likes any pet owned by ownerID
func (r *MatchRepository) HasLikeOnPetsOf(ctx context.Context, likerID, ownerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM matches mt
			JOIN mascotas m ON mt.mascota_id = m.id
			WHERE mt.usuario_id = $1 AND m.usuario_id = $2
		)
	`, likerID, ownerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reciprocal like: %w", err)
	}
	return exists, nil
}

// CreateChatIfAbsent creates the chat of the pair unless one exists already
func (r *MatchRepository) CreateChatIfAbsent(ctx context.Context, userA, userB int64) (*models.Chat, bool, error) {
	low, high := models.NormalizePair(userA, userB)

	var chat models.Chat
	err := r.db.QueryRow(ctx, `
		INSERT INTO chats (usuario1_id, usuario2_id, fecha_creacion)
		VALUES ($1, $2, NOW())
		ON CONFLICT (usuario1_id, usuario2_id) DO NOTHING
		RETURNING id, usuario1_id, usuario2_id, fecha_creacion, ultimo_mensaje
	`, low, high).Scan(&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.LastMessageAt)
	if err == nil {
		return &chat, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create chat: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT id, usuario1_id, usuario2_id, fecha_creacion, ultimo_mensaje
		FROM chats
		WHERE usuario1_id = $1 AND usuario2_id = $2
	`, low, high).Scan(&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt, &chat.LastMessageAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get existing chat: %w", err)
	}
	return &chat, false, nil
}

// CreateReject records a reject; repeated rejects are ignored
func (r *MatchRepository) CreateReject(ctx context.Context, userID, petID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rechazos (usuario_id, mascota_id, fecha_rechazo)
		VALUES ($1, $2, NOW())
		ON CONFLICT (usuario_id, mascota_id) DO NOTHING
	`, userID, petID)
	if err != nil {
		return fmt.Errorf("failed to create reject: %w", err)
	}
	return nil
}

// ListAvailablePets returns a random sample of pets the user has not decided on
func (r *MatchRepository) ListAvailablePets(ctx context.Context, userID int64, limit int) ([]*models.Pet, error) {
	query := `
		SELECT ` + petColumns + ` FROM mascotas m
		WHERE m.usuario_id != $1
		AND NOT EXISTS (SELECT 1 FROM matches WHERE usuario_id = $1 AND mascota_id = m.id)
		AND NOT EXISTS (SELECT 1 FROM rechazos WHERE usuario_id = $1 AND mascota_id = m.id)
		ORDER BY random()
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list available pets: %w", err)
	}
	return collectPets(rows)
}
