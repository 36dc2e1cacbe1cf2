package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"doggydate-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	defaultTokenTTL   = 24 * time.Hour
)

// Claims is the payload of the access tokens issued at login
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// RegisterRequest holds the fields accepted at sign up
type RegisterRequest struct {
	Name     string `json:"nombre"`
	LastName string `json:"apellidos"`
	Age      *int   `json:"edad"`
	Location string `json:"localizacion"`
	Email    string `json:"correo"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"usuario"`
}

// UserService handles user-related business logic
type UserService struct {
	userRepo  UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, jwtSecret string, tokenTTL time.Duration) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	return claims.UserID, nil
}

// Register creates an account with a bcrypt password hash
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" {
		return nil, validationError("nombre is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, validationError("correo is not a valid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, validationError("password must have at least %d characters", minPasswordLength)
	}
	if req.Age != nil && *req.Age < 0 {
		return nil, validationError("edad must not be negative")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		LastName:     strings.TrimSpace(req.LastName),
		Age:          req.Age,
		Location:     strings.TrimSpace(req.Location),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login checks the credentials and issues an access token
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("correo and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: user}, nil
}

// GetUser returns the profile of a user
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, validationError("invalid user id")
	}
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateUser applies a partial update to the caller's own profile
func (s *UserService) UpdateUser(ctx context.Context, callerID, userID int64, update models.UserUpdate) (*models.User, error) {
	if callerID != userID {
		return nil, ErrForbidden
	}
	if update.Empty() {
		return nil, validationError("no fields to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, validationError("nombre must not be empty")
	}
	if update.Age != nil && *update.Age < 0 {
		return nil, validationError("edad must not be negative")
	}
	return s.userRepo.Update(ctx, userID, update)
}

// DeleteUser removes the caller's account and everything that references it
func (s *UserService) DeleteUser(ctx context.Context, callerID, userID int64) error {
	if callerID != userID {
		return ErrForbidden
	}
	return s.userRepo.Delete(ctx, userID)
}
