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

const petColumns = `id, usuario_id, nombre, raza, edad, genero, caracteristicas, gustos, imagenes`

// PetRepository handles database operations for pets
type PetRepository struct {
	db DBTX
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db *pgxpool.Pool) *PetRepository {
	return &PetRepository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction
func (r *PetRepository) Transaction(ctx context.Context, fn func(services.PetRepository) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&PetRepository{db: tx})
	})
}

// Create creates a new pet and fills in its id
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	if pet.Images == nil {
		pet.Images = []string{}
	}
	query := `
		INSERT INTO mascotas (usuario_id, nombre, raza, edad, genero, caracteristicas, gustos, imagenes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		pet.OwnerID, pet.Name, pet.Breed, pet.Age, pet.Gender, pet.Traits, pet.Likes, pet.Images,
	).Scan(&pet.ID)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

// GetByID retrieves a pet by ID
func (r *PetRepository) GetByID(ctx context.Context, id int64) (*models.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM mascotas WHERE id = $1`
	pet, err := scanPet(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return pet, nil
}

// ListByOwner retrieves the pets of a user
func (r *PetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM mascotas WHERE usuario_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return collectPets(rows)
}

// Update applies a partial update; nil fields keep the stored value
func (r *PetRepository) Update(ctx context.Context, id int64, update models.PetUpdate) (*models.Pet, error) {
	var images []string
	if update.Images != nil {
		images = *update.Images
		if images == nil {
			images = []string{}
		}
	}
	query := `
		UPDATE mascotas SET
			nombre          = COALESCE($2, nombre),
			raza            = COALESCE($3, raza),
			edad            = COALESCE($4, edad),
			genero          = COALESCE($5, genero),
			caracteristicas = COALESCE($6, caracteristicas),
			gustos          = COALESCE($7, gustos),
			imagenes        = CASE WHEN $8::boolean THEN $9::text[] ELSE imagenes END
		WHERE id = $1
		RETURNING ` + petColumns
	pet, err := scanPet(r.db.QueryRow(ctx, query, id,
		update.Name, update.Breed, update.Age, update.Gender, update.Traits, update.Likes,
		update.Images != nil, images,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}
	return pet, nil
}

// AppendImage adds an image reference at the end of the pet's image list
func (r *PetRepository) AppendImage(ctx context.Context, id int64, image string) (*models.Pet, error) {
	query := `
		UPDATE mascotas SET imagenes = array_append(imagenes, $2)
		WHERE id = $1
		RETURNING ` + petColumns
	pet, err := scanPet(r.db.QueryRow(ctx, query, id, image))
	if err != nil {
		return nil, fmt.Errorf("failed to append pet image: %w", err)
	}
	return pet, nil
}

// Delete removes the pet following PetDeletionPlan in one transaction
func (r *PetRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		affected, err := executePlan(ctx, tx, PetDeletionPlan, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return services.ErrPetNotFound
		}
		return nil
	})
}

func scanPet(row pgx.Row) (*models.Pet, error) {
	var pet models.Pet
	err := row.Scan(
		&pet.ID, &pet.OwnerID, &pet.Name, &pet.Breed, &pet.Age, &pet.Gender,
		&pet.Traits, &pet.Likes, &pet.Images,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrPetNotFound
		}
		return nil, err
	}
	return &pet, nil
}

func collectPets(rows pgx.Rows) ([]*models.Pet, error) {
	defer rows.Close()

	pets := []*models.Pet{}
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pets: %w", err)
	}
	return pets, nil
}

const vaccineColumns = `id, mascota_id, nombre, to_char(fecha_aplicacion, 'YYYY-MM-DD'), aplicada,
	to_char(fecha_proxima, 'YYYY-MM-DD'), notas`

// ListVaccines retrieves the vaccines of a pet, most recently applied first
func (r *PetRepository) ListVaccines(ctx context.Context, petID int64) ([]*models.Vaccine, error) {
	query := `SELECT ` + vaccineColumns + ` FROM vacunas_mascota
		WHERE mascota_id = $1
		ORDER BY fecha_aplicacion DESC NULLS LAST, id DESC`
	rows, err := r.db.Query(ctx, query, petID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}
	defer rows.Close()

	vaccines := []*models.Vaccine{}
	for rows.Next() {
		vaccine, err := scanVaccine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vaccine: %w", err)
		}
		vaccines = append(vaccines, vaccine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vaccines: %w", err)
	}
	return vaccines, nil
}

// CreateVaccine inserts a vaccine record and fills in its id
func (r *PetRepository) CreateVaccine(ctx context.Context, vaccine *models.Vaccine) error {
	query := `
		INSERT INTO vacunas_mascota (mascota_id, nombre, fecha_aplicacion, aplicada, fecha_proxima, notas)
		VALUES ($1, $2, $3::text::date, $4, $5::text::date, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		vaccine.PetID, vaccine.Name, vaccine.AppliedOn, vaccine.Applied, vaccine.NextDue, vaccine.Notes,
	).Scan(&vaccine.ID)
	if err != nil {
		return fmt.Errorf("failed to create vaccine: %w", err)
	}
	return nil
}

// GetVaccine retrieves a vaccine by ID
func (r *PetRepository) GetVaccine(ctx context.Context, id int64) (*models.Vaccine, error) {
	query := `SELECT ` + vaccineColumns + ` FROM vacunas_mascota WHERE id = $1`
	vaccine, err := scanVaccine(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get vaccine: %w", err)
	}
	return vaccine, nil
}

// UpdateVaccine applies a partial update; nil fields keep the stored value
func (r *PetRepository) UpdateVaccine(ctx context.Context, id int64, update models.VaccineUpdate) (*models.Vaccine, error) {
	query := `
		UPDATE vacunas_mascota SET
			nombre           = COALESCE($2, nombre),
			fecha_aplicacion = COALESCE($3::text::date, fecha_aplicacion),
			aplicada         = COALESCE($4, aplicada),
			fecha_proxima    = COALESCE($5::text::date, fecha_proxima),
			notas            = COALESCE($6, notas)
		WHERE id = $1
		RETURNING ` + vaccineColumns
	vaccine, err := scanVaccine(r.db.QueryRow(ctx, query, id,
		update.Name, update.AppliedOn, update.Applied, update.NextDue, update.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update vaccine: %w", err)
	}
	return vaccine, nil
}

// DeleteVaccine removes a vaccine record
func (r *PetRepository) DeleteVaccine(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vacunas_mascota WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vaccine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrVaccineNotFound
	}
	return nil
}

func scanVaccine(row pgx.Row) (*models.Vaccine, error) {
	var v models.Vaccine
	err := row.Scan(&v.ID, &v.PetID, &v.Name, &v.AppliedOn, &v.Applied, &v.NextDue, &v.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrVaccineNotFound
		}
		return nil, err
	}
	return &v, nil
}
