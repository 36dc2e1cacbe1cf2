package handlers

import (
	"net/http"

	"doggydate-backend/internal/middleware"
	"doggydate-backend/internal/models"
	"doggydate-backend/internal/services"

	"github.com/rs/zerolog/hlog"
)

// PetHandler handles pet-related HTTP requests
type PetHandler struct {
	petService   *services.PetService
	mediaService *services.MediaService
}

// NewPetHandler creates a new pet handler. mediaService may be nil when
// image uploads are not configured.
func NewPetHandler(petService *services.PetService, mediaService *services.MediaService) *PetHandler {
	return &PetHandler{
		petService:   petService,
		mediaService: mediaService,
	}
}

// ImageUploadRequest asks for an upload URL for a new pet image
type ImageUploadRequest struct {
	ContentType string `json:"content_type"`
}

// CreatePet handles POST /mascotas
func (h *PetHandler) CreatePet(w http.ResponseWriter, r *http.Request) {
	var pet models.Pet
	if !decodeJSON(w, r, &pet) {
		return
	}
	userID := middleware.GetUserID(r.Context())
	if pet.OwnerID != 0 && pet.OwnerID != userID {
		respondError(w, "Forbidden", http.StatusForbidden)
		return
	}

	created, err := h.petService.CreatePet(r.Context(), userID, &pet)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create pet")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", userID).Int64("pet_id", created.ID).Msg("Pet created")
	respondJSON(w, http.StatusCreated, created)
}

// GetPet handles GET /mascotas/{petId}
func (h *PetHandler) GetPet(w http.ResponseWriter, r *http.Request) {
	petID, ok := urlID(r, "petId")
	if !ok {
		respondError(w, "Invalid pet id", http.StatusBadRequest)
		return
	}

	pet, err := h.petService.GetPet(r.Context(), petID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get pet")
		return
	}

	respondJSON(w, http.StatusOK, pet)
}

// UpdatePet handles PUT /mascotas/{petId}
func (h *PetHandler) UpdatePet(w http.ResponseWriter, r *http.Request) {
	petID, ok := urlID(r, "petId")
	if !ok {
		respondError(w, "Invalid pet id", http.StatusBadRequest)
		return
	}
	var update models.PetUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	pet, err := h.petService.UpdatePet(r.Context(), middleware.GetUserID(r.Context()), petID, update)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update pet")
		return
	}

	respondJSON(w, http.StatusOK, pet)
}

// DeletePet handles DELETE /mascotas/{petId}
func (h *PetHandler) DeletePet(w http.ResponseWriter, r *http.Request) {
	petID, ok := urlID(r, "petId")
	if !ok {
		respondError(w, "Invalid pet id", http.StatusBadRequest)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.petService.DeletePet(r.Context(), userID, petID); err != nil {
		respondServiceError(w, r, err, "Failed to delete pet")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", userID).Int64("pet_id", petID).Msg("Pet deleted")
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// RequestImageUpload handles POST /mascotas/{petId}/imagenes
func (h *PetHandler) RequestImageUpload(w http.ResponseWriter, r *http.Request) {
	if h.mediaService == nil {
		respondError(w, "Image uploads are not configured", http.StatusServiceUnavailable)
		return
	}
	petID, ok := urlID(r, "petId")
	if !ok {
		respondError(w, "Invalid pet id", http.StatusBadRequest)
		return
	}
	var req ImageUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	resp, err := h.mediaService.RequestPetImageUpload(r.Context(), middleware.GetUserID(r.Context()), petID, req.ContentType)
	if err != nil {
		respondServiceError(w, r, err, "Failed to issue image upload URL")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// ListVaccines handles GET /mascotas/{petId}/vacunas
func (h *PetHandler) ListVaccines(w http.ResponseWriter, r *http.Request) {
	petID, ok := urlID(r, "petId")
	if !ok {
		respondError(w, "Invalid pet id", http.StatusBadRequest)
		return
	}

	vaccines, err := h.petService.ListVaccines(r.Context(), petID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list vaccines")
		return
	}

	respondJSON(w, http.StatusOK, vaccines)
}

// CreateVaccine handles POST /mascotas/{petId}/vacunas
func (h *PetHandler) CreateVaccine(w http.ResponseWriter, r *http.Request) {
	petID, ok := urlID(r, "petId")
	if !ok {
		respondError(w, "Invalid pet id", http.StatusBadRequest)
		return
	}
	var vaccine models.Vaccine
	if !decodeJSON(w, r, &vaccine) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	created, err := h.petService.CreateVaccine(r.Context(), userID, petID, &vaccine)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create vaccine")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", userID).Int64("pet_id", petID).Int64("vaccine_id", created.ID).Msg("Vaccine created")
	respondJSON(w, http.StatusCreated, created)
}

// UpdateVaccine handles PUT /vacunas/{vaccineId}
func (h *PetHandler) UpdateVaccine(w http.ResponseWriter, r *http.Request) {
	vaccineID, ok := urlID(r, "vaccineId")
	if !ok {
		respondError(w, "Invalid vaccine id", http.StatusBadRequest)
		return
	}
	var update models.VaccineUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	vaccine, err := h.petService.UpdateVaccine(r.Context(), middleware.GetUserID(r.Context()), vaccineID, update)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update vaccine")
		return
	}

	respondJSON(w, http.StatusOK, vaccine)
}

// DeleteVaccine handles DELETE /vacunas/{vaccineId}
func (h *PetHandler) DeleteVaccine(w http.ResponseWriter, r *http.Request) {
	vaccineID, ok := urlID(r, "vaccineId")
	if !ok {
		respondError(w, "Invalid vaccine id", http.StatusBadRequest)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.petService.DeleteVaccine(r.Context(), userID, vaccineID); err != nil {
		respondServiceError(w, r, err, "Failed to delete vaccine")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", userID).Int64("vaccine_id", vaccineID).Msg("Vaccine deleted")
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
