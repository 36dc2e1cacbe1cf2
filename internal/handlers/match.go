package handlers

import (
	"net/http"

	"doggydate-backend/internal/services"

	"github.com/rs/zerolog/hlog"
)

// MatchHandler handles swipe decisions
type MatchHandler struct {
	matchService *services.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// DecisionRequest is the body of a like or a reject
type DecisionRequest struct {
	UserID int64 `json:"usuario_id"`
	PetID  int64 `json:"mascota_id"`
}

// LikeResponse reports whether a like completed a match
type LikeResponse struct {
	Success bool `json:"success"`
	IsMatch bool `json:"isMatch"`
}

// Like handles POST /matches
func (h *MatchHandler) Like(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !requireSelf(w, r, req.UserID, req.UserID > 0) {
		return
	}
	if req.PetID <= 0 {
		respondError(w, "mascota_id is required", http.StatusBadRequest)
		return
	}

	isMatch, err := h.matchService.RecordLike(r.Context(), req.UserID, req.PetID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to record like")
		return
	}

	hlog.FromRequest(r).Info().
		Int64("user_id", req.UserID).
		Int64("pet_id", req.PetID).
		Bool("is_match", isMatch).
		Msg("Like recorded")

	respondJSON(w, http.StatusOK, LikeResponse{Success: true, IsMatch: isMatch})
}

// Reject handles POST /rechazos
func (h *MatchHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !requireSelf(w, r, req.UserID, req.UserID > 0) {
		return
	}
	if req.PetID <= 0 {
		respondError(w, "mascota_id is required", http.StatusBadRequest)
		return
	}

	if err := h.matchService.RecordReject(r.Context(), req.UserID, req.PetID); err != nil {
		respondServiceError(w, r, err, "Failed to record reject")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// AvailablePets handles GET /mascotas/disponibles/{userId}
func (h *MatchHandler) AvailablePets(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "userId")
	if !requireSelf(w, r, userID, ok) {
		return
	}

	pets, err := h.matchService.ListAvailablePets(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list available pets")
		return
	}

	respondJSON(w, http.StatusOK, pets)
}
