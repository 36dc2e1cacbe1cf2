package services

import (
	"context"
	"fmt"

	"doggydate-backend/internal/metrics"
	"doggydate-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const defaultPageSize = 10

// MatchService records swipe decisions and opens a chat when two users like
// each other's pets
type MatchService struct {
	repo     MatchRepository
	notifier Notifier
	pageSize int
}

// NewMatchService creates a new match service
func NewMatchService(repo MatchRepository, notifier Notifier, pageSize int) *MatchService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &MatchService{
		repo:     repo,
		notifier: notifier,
		pageSize: pageSize,
	}
}

// RecordLike stores that userID likes petID. It reports a match when the
// like is new and the pet's owner already likes some pet of userID; in that
// case the pair's chat exists when RecordLike returns.
func (s *MatchService) RecordLike(ctx context.Context, userID, petID int64) (bool, error) {
	if userID <= 0 || petID <= 0 {
		return false, validationError("usuario_id and mascota_id are required")
	}

	var (
		isMatch     bool
		ownerID     int64
		chat        *models.Chat
		chatCreated bool
	)
	err := s.repo.Transaction(ctx, func(repo MatchRepository) error {
		var err error
		ownerID, err = repo.GetPetOwner(ctx, petID)
		if err != nil {
			return err
		}
		exists, err := repo.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		if ownerID == userID {
			return validationError("cannot like your own pet")
		}

		if err := repo.LockPair(ctx, userID, ownerID); err != nil {
			return err
		}
		isNew, err := repo.CreateLike(ctx, userID, petID)
		if err != nil {
			return err
		}
		reciprocal, err := repo.HasLikeOnPetsOf(ctx, ownerID, userID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		chat, chatCreated, err = repo.CreateChatIfAbsent(ctx, userID, ownerID)
		if err != nil {
			return err
		}
		isMatch = isNew
		return nil
	})
	if err != nil {
		return false, err
	}

	metrics.LikesTotal.Inc()
	if isMatch {
		metrics.MatchesTotal.Inc()
	}
	if chatCreated {
		metrics.ChatsCreatedTotal.Inc()
		log.Info().
			Int64("user_id", userID).
			Int64("owner_id", ownerID).
			Int64("chat_id", chat.ID).
			Msg("Match created")

		notifyAsync(s.notifier, ownerID, Notification{
			Title: "New match",
			Body:  "Someone likes your pet back. Say hello!",
			Data:  map[string]any{"chat_id": chat.ID},
		})
	}

	return isMatch, nil
}

// RecordReject stores that userID passed on petID
func (s *MatchService) RecordReject(ctx context.Context, userID, petID int64) error {
	if userID <= 0 || petID <= 0 {
		return validationError("usuario_id and mascota_id are required")
	}

	ownerID, err := s.repo.GetPetOwner(ctx, petID)
	if err != nil {
		return err
	}
	if ownerID == userID {
		return validationError("cannot reject your own pet")
	}
	if err := s.repo.CreateReject(ctx, userID, petID); err != nil {
		return fmt.Errorf("failed to record reject: %w", err)
	}

	metrics.RejectsTotal.Inc()
	return nil
}

// ListAvailablePets returns a random page of pets userID has not decided on
// and does not own
func (s *MatchService) ListAvailablePets(ctx context.Context, userID int64) ([]*models.Pet, error) {
	if userID <= 0 {
		return nil, validationError("usuario_id is required")
	}
	return s.repo.ListAvailablePets(ctx, userID, s.pageSize)
}
