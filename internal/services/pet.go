package services

import (
	"context"
	"strings"
	"time"

	"doggydate-backend/internal/models"
)

// MaxPetImages is the number of images a pet profile can hold
const MaxPetImages = 5

const vaccineDateLayout = "2006-01-02"

// PetService handles pet profiles
type PetService struct {
	repo PetRepository
}

// NewPetService creates a new pet service
func NewPetService(repo PetRepository) *PetService {
	return &PetService{repo: repo}
}

// CreatePet stores a new pet owned by ownerID
func (s *PetService) CreatePet(ctx context.Context, ownerID int64, pet *models.Pet) (*models.Pet, error) {
	pet.Name = strings.TrimSpace(pet.Name)
	if pet.Name == "" {
		return nil, validationError("nombre is required")
	}
	if pet.Age != nil && *pet.Age < 0 {
		return nil, validationError("edad must not be negative")
	}
	if len(pet.Images) > MaxPetImages {
		return nil, validationError("a pet can have at most %d images", MaxPetImages)
	}

	pet.ID = 0
	pet.OwnerID = ownerID
	if err := s.repo.Create(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

// GetPet returns a pet by id
func (s *PetService) GetPet(ctx context.Context, petID int64) (*models.Pet, error) {
	if petID <= 0 {
		return nil, validationError("invalid pet id")
	}
	return s.repo.GetByID(ctx, petID)
}

// ListPetsByOwner returns the pets of a user
func (s *PetService) ListPetsByOwner(ctx context.Context, ownerID int64) ([]*models.Pet, error) {
	if ownerID <= 0 {
		return nil, validationError("invalid user id")
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdatePet applies a partial update to a pet owned by callerID
func (s *PetService) UpdatePet(ctx context.Context, callerID, petID int64, update models.PetUpdate) (*models.Pet, error) {
	if update.Empty() {
		return nil, validationError("no fields to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, validationError("nombre must not be empty")
	}
	if update.Age != nil && *update.Age < 0 {
		return nil, validationError("edad must not be negative")
	}
	if update.Images != nil && len(*update.Images) > MaxPetImages {
		return nil, validationError("a pet can have at most %d images", MaxPetImages)
	}

	var updated *models.Pet
	err := s.repo.Transaction(ctx, func(repo PetRepository) error {
		if err := checkOwner(ctx, repo, callerID, petID); err != nil {
			return err
		}
		var err error
		updated, err = repo.Update(ctx, petID, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePet removes a pet owned by callerID together with its vaccines,
// likes and rejects
func (s *PetService) DeletePet(ctx context.Context, callerID, petID int64) error {
	return s.repo.Transaction(ctx, func(repo PetRepository) error {
		if err := checkOwner(ctx, repo, callerID, petID); err != nil {
			return err
		}
		return repo.Delete(ctx, petID)
	})
}

// ListVaccines returns the vaccines of a pet, most recently applied first
func (s *PetService) ListVaccines(ctx context.Context, petID int64) ([]*models.Vaccine, error) {
	if petID <= 0 {
		return nil, validationError("invalid pet id")
	}
	if _, err := s.repo.GetByID(ctx, petID); err != nil {
		return nil, err
	}
	return s.repo.ListVaccines(ctx, petID)
}

// CreateVaccine adds a vaccine record to a pet owned by callerID
func (s *PetService) CreateVaccine(ctx context.Context, callerID, petID int64, vaccine *models.Vaccine) (*models.Vaccine, error) {
	vaccine.Name = strings.TrimSpace(vaccine.Name)
	if vaccine.Name == "" {
		return nil, validationError("nombre is required")
	}
	if err := validateVaccineDates(vaccine.AppliedOn, vaccine.NextDue); err != nil {
		return nil, err
	}

	vaccine.ID = 0
	vaccine.PetID = petID
	err := s.repo.Transaction(ctx, func(repo PetRepository) error {
		if err := checkOwner(ctx, repo, callerID, petID); err != nil {
			return err
		}
		return repo.CreateVaccine(ctx, vaccine)
	})
	if err != nil {
		return nil, err
	}
	return vaccine, nil
}

// UpdateVaccine applies a partial update to a vaccine of a pet owned by
// callerID
func (s *PetService) UpdateVaccine(ctx context.Context, callerID, vaccineID int64, update models.VaccineUpdate) (*models.Vaccine, error) {
	if update.Empty() {
		return nil, validationError("no fields to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, validationError("nombre must not be empty")
	}
	if err := validateVaccineDates(update.AppliedOn, update.NextDue); err != nil {
		return nil, err
	}

	var updated *models.Vaccine
	err := s.repo.Transaction(ctx, func(repo PetRepository) error {
		if err := checkVaccineOwner(ctx, repo, callerID, vaccineID); err != nil {
			return err
		}
		var err error
		updated, err = repo.UpdateVaccine(ctx, vaccineID, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteVaccine removes a vaccine of a pet owned by callerID
func (s *PetService) DeleteVaccine(ctx context.Context, callerID, vaccineID int64) error {
	return s.repo.Transaction(ctx, func(repo PetRepository) error {
		if err := checkVaccineOwner(ctx, repo, callerID, vaccineID); err != nil {
			return err
		}
		return repo.DeleteVaccine(ctx, vaccineID)
	})
}

func checkVaccineOwner(ctx context.Context, repo PetRepository, callerID, vaccineID int64) error {
	if vaccineID <= 0 {
		return validationError("invalid vaccine id")
	}
	vaccine, err := repo.GetVaccine(ctx, vaccineID)
	if err != nil {
		return err
	}
	return checkOwner(ctx, repo, callerID, vaccine.PetID)
}

func validateVaccineDates(dates ...*string) error {
	for _, d := range dates {
		if d == nil {
			continue
		}
		if _, err := time.Parse(vaccineDateLayout, *d); err != nil {
			return validationError("invalid date %q, expected YYYY-MM-DD", *d)
		}
	}
	return nil
}

func checkOwner(ctx context.Context, repo PetRepository, callerID, petID int64) error {
	if petID <= 0 {
		return validationError("invalid pet id")
	}
	pet, err := repo.GetByID(ctx, petID)
	if err != nil {
		return err
	}
	if pet.OwnerID != callerID {
		return ErrNotOwner
	}
	return nil
}
