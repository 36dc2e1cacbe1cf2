package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"doggydate-backend/internal/middleware"
	"doggydate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is returned by operations without a body of their own
type SuccessResponse struct {
	Success bool `json:"success"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends v as a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// statusFromError maps service errors to HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs err and sends the matching status. Internal
// errors are not exposed to the client.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFromError(err)
	logger := hlog.FromRequest(r)

	var event *zerolog.Event
	if status == http.StatusInternalServerError {
		event = logger.Error()
	} else {
		event = logger.Warn()
	}
	event.Err(err).Int("status", status).Int64("user_id", middleware.GetUserID(r.Context())).Msg(msg)

	if status == http.StatusInternalServerError {
		respondError(w, "Internal server error", status)
		return
	}
	respondError(w, err.Error(), status)
}

// decodeJSON decodes the request body into v. It writes a 400 response and
// returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// urlID parses a positive integer path parameter
func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// queryUserID reads the required usuario_id query parameter
func queryUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("usuario_id"), 10, 64)
	return id, err == nil && id > 0
}

// requireSelf checks that the user id named by the request is the
// authenticated user. It writes the error response and returns false
// otherwise.
func requireSelf(w http.ResponseWriter, r *http.Request, userID int64, ok bool) bool {
	if !ok {
		respondError(w, "usuario_id is required", http.StatusBadRequest)
		return false
	}
	if userID != middleware.GetUserID(r.Context()) {
		hlog.FromRequest(r).Warn().
			Int64("user_id", middleware.GetUserID(r.Context())).
			Int64("requested_user_id", userID).
			Msg("Request for another user rejected")
		respondError(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}
