package handlers

import (
	"encoding/json"
	"net/http"

	"sparkmatch-backend/internal/apperrors"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondServiceError maps the error taxonomy onto HTTP status codes:
// NotFound 404, Validation and Conflict 400, Unauthorized 401, everything
// else 500 with the full error logged.
func respondServiceError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.NotFound:
		respondError(w, err.Error(), http.StatusNotFound)
	case apperrors.Validation, apperrors.Conflict:
		respondError(w, err.Error(), http.StatusBadRequest)
	case apperrors.Unauthorized:
		respondError(w, err.Error(), http.StatusUnauthorized)
	default:
		log.Error().Err(err).Msg("Internal error")
		respondError(w, "internal error", http.StatusInternalServerError)
	}
}
