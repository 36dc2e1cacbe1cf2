package services

import (
	"context"
	"time"

	"doggydate-backend/internal/models"
)

// UserRepository persists users. Lookups return ErrUserNotFound when the row
// does not exist and Create returns ErrEmailTaken on a duplicate email.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// PetRepository persists pets and their vaccines. Lookups return
// ErrPetNotFound or ErrVaccineNotFound.
type PetRepository interface {
	Transaction(ctx context.Context, fn func(PetRepository) error) error
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id int64) (*models.Pet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Pet, error)
	Update(ctx context.Context, id int64, update models.PetUpdate) (*models.Pet, error)
	AppendImage(ctx context.Context, id int64, image string) (*models.Pet, error)
	Delete(ctx context.Context, id int64) error

	ListVaccines(ctx context.Context, petID int64) ([]*models.Vaccine, error)
	CreateVaccine(ctx context.Context, vaccine *models.Vaccine) error
	GetVaccine(ctx context.Context, id int64) (*models.Vaccine, error)
	UpdateVaccine(ctx context.Context, id int64, update models.VaccineUpdate) (*models.Vaccine, error)
	DeleteVaccine(ctx context.Context, id int64) error
}

// MatchRepository persists likes, rejects and the chats that matches open.
type MatchRepository interface {
	Transaction(ctx context.Context, fn func(MatchRepository) error) error
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetPetOwner(ctx context.Context, petID int64) (int64, error)
	// LockPair serializes match decisions of one unordered user pair until
	// the surrounding transaction ends.
	LockPair(ctx context.Context, userA, userB int64) error
	// CreateLike records a like and reports whether it did not exist yet.
	CreateLike(ctx context.Context, userID, petID int64) (bool, error)
	// HasLikeOnPetsOf reports whether likerID likes any pet owned by ownerID.
	HasLikeOnPetsOf(ctx context.Context, likerID, ownerID int64) (bool, error)
	// CreateChatIfAbsent returns the chat of the pair, creating it when
	// missing. The bool reports whether it was created.
	CreateChatIfAbsent(ctx context.Context, userA, userB int64) (*models.Chat, bool, error)
	CreateReject(ctx context.Context, userID, petID int64) error
	ListAvailablePets(ctx context.Context, userID int64, limit int) ([]*models.Pet, error)
}

// ChatRepository persists chats and their messages.
type ChatRepository interface {
	Transaction(ctx context.Context, fn func(ChatRepository) error) error
	GetByID(ctx context.Context, chatID int64) (*models.Chat, error)
	// LockByIDs returns the existing chats among chatIDs, locked for update.
	LockByIDs(ctx context.Context, chatIDs []int64) ([]*models.Chat, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.ChatSummary, error)
	ListMessages(ctx context.Context, chatID int64) ([]*models.Message, error)
	MarkRead(ctx context.Context, chatID, readerID int64) (int64, error)
	CreateMessage(ctx context.Context, chatID, senderID int64, text string) (*models.Message, error)
	TouchLastMessage(ctx context.Context, chatID int64, at time.Time) error
	// DeleteWithMessages removes the messages of the chats, then the chats.
	DeleteWithMessages(ctx context.Context, chatIDs []int64) (int64, error)
}
