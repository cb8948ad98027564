package handlers

import (
	"encoding/json"
	"net/http"

	"sparkmatch-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PictureHandler handles picture-related HTTP requests
type PictureHandler struct {
	pictureService *services.PictureService
}

// NewPictureHandler creates a new picture handler
func NewPictureHandler(pictureService *services.PictureService) *PictureHandler {
	return &PictureHandler{pictureService: pictureService}
}

// CreatePictureRequest represents a picture upload request
type CreatePictureRequest struct {
	Payload string `json:"payload"`
}

// ReorderPictureRequest represents a picture reorder request
type ReorderPictureRequest struct {
	Order *int `json:"order"`
}

// Create handles POST /users/{id}/pictures
func (h *PictureHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req CreatePictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	picture, err := h.pictureService.Append(r.Context(), userID, req.Payload)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("picture_id", picture.ID).Msg("Picture added")
	respondJSON(w, http.StatusCreated, map[string]string{"id": picture.ID})
}

// Reorder handles PATCH /users/{id}/pictures/{picture_id}
func (h *PictureHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderPictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Order == nil {
		respondError(w, "order is required", http.StatusBadRequest)
		return
	}

	err := h.pictureService.Reorder(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "picture_id"), *req.Order)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

// Delete handles DELETE /users/{id}/pictures/{picture_id}
func (h *PictureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.pictureService.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "picture_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
