package handlers

import (
	"net/http"

	"doggydate-backend/internal/middleware"
	"doggydate-backend/internal/models"
	"doggydate-backend/internal/services"

	"github.com/rs/zerolog/hlog"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	petService  *services.PetService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, petService *services.PetService) *UserHandler {
	return &UserHandler{
		userService: userService,
		petService:  petService,
	}
}

// LoginRequest is the body of POST /usuarios/login
type LoginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"password"`
}

// Register handles POST /usuarios
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to register user")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", user.ID).Msg("User registered")
	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /usuarios/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetUser handles GET /usuarios/{userId}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "userId")
	if !ok {
		respondError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get user")
		return
	}

	if user.ID != middleware.GetUserID(r.Context()) {
		respondJSON(w, http.StatusOK, user.Public())
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ListUserPets handles GET /usuarios/{userId}/mascotas
func (h *UserHandler) ListUserPets(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "userId")
	if !ok {
		respondError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	pets, err := h.petService.ListPetsByOwner(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list user pets")
		return
	}

	respondJSON(w, http.StatusOK, pets)
}

// UpdateUser handles PUT /usuarios/{userId}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "userId")
	if !requireSelf(w, r, userID, ok) {
		return
	}
	var update models.UserUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), middleware.GetUserID(r.Context()), userID, update)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /usuarios/{userId}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "userId")
	if !requireSelf(w, r, userID, ok) {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), middleware.GetUserID(r.Context()), userID); err != nil {
		respondServiceError(w, r, err, "Failed to delete user")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", userID).Msg("User deleted")
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
