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

const userColumns = `id, nombre, apellidos, edad, localizacion, correo, password, imagen_perfil, push_token, fecha_registro`

// UserRepository handles database operations for users
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user and fills in its id and registration time
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO usuarios (nombre, apellidos, edad, localizacion, correo, password, imagen_perfil)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, fecha_registro
	`
	err := r.db.QueryRow(ctx, query,
		user.Name, user.LastName, user.Age, user.Location, user.Email, user.PasswordHash, user.ProfileImage,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return services.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE correo = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Update applies a partial update. Each column keeps its value when the
// corresponding field is nil.
func (r *UserRepository) Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE usuarios SET
			nombre        = COALESCE($2, nombre),
			apellidos     = COALESCE($3, apellidos),
			edad          = COALESCE($4, edad),
			localizacion  = COALESCE($5, localizacion),
			imagen_perfil = COALESCE($6, imagen_perfil),
			push_token    = COALESCE($7, push_token)
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, id,
		update.Name, update.LastName, update.Age, update.Location, update.ProfileImage, update.PushToken,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes the user following UserDeletionPlan in one transaction
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		affected, err := executePlan(ctx, tx, UserDeletionPlan, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return services.ErrUserNotFound
		}
		return nil
	})
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Name, &user.LastName, &user.Age, &user.Location, &user.Email,
		&user.PasswordHash, &user.ProfileImage, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
