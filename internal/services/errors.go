package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrPetNotFound  = fmt.Errorf("pet %w", ErrNotFound)
	ErrChatNotFound = fmt.Errorf("chat %w", ErrNotFound)

	ErrVaccineNotFound = fmt.Errorf("vaccine %w", ErrNotFound)

	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrNotParticipant     = fmt.Errorf("user is not a participant of this chat: %w", ErrForbidden)
	ErrNotOwner           = fmt.Errorf("user does not own this pet: %w", ErrForbidden)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func isNotFoundOrForbidden(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}
