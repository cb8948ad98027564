package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"sparkmatch-backend/internal/middleware"
	"sparkmatch-backend/internal/models"
	"sparkmatch-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService  *services.UserService
	graphService *services.GraphService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, graphService *services.GraphService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		graphService: graphService,
	}
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, publicUsers(users))
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

// Update handles PATCH /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

// Delete handles DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Matches handles GET /users/{id}/matches
func (h *UserHandler) Matches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.graphService.Matches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"matches": publicUsers(matches)})
}

// Around handles GET /users/{id}/around
func (h *UserHandler) Around(w http.ResponseWriter, r *http.Request) {
	around, err := h.graphService.Around(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": publicUsers(around)})
}

// RelationRequest represents a like/nope/reveal request
type RelationRequest struct {
	Target string `json:"target"`
}

// AddLike handles PATCH /users/{id}/like
func (h *UserHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.graphService.AddLike)
}

// AddNope handles PATCH /users/{id}/nope
func (h *UserHandler) AddNope(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.graphService.AddNope)
}

// AddReveal handles PATCH /users/{id}/reveal
func (h *UserHandler) AddReveal(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.graphService.AddReveal)
}

func (h *UserHandler) addRelation(w http.ResponseWriter, r *http.Request, add func(ctx context.Context, userID, targetID string) error) {
	var req RelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := add(r.Context(), chi.URLParam(r, "id"), req.Target); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func publicUsers(users []*models.User) []*models.User {
	out := make([]*models.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

// ReportRequest represents a report creation request
type ReportRequest struct {
	Reason string `json:"reason"`
}

// AddReport handles POST /users/{id}/reports
func (h *UserHandler) AddReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reporter := middleware.GetUserID(r.Context())
	report, err := h.graphService.AddReport(r.Context(), chi.URLParam(r, "id"), reporter, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", chi.URLParam(r, "id")).Str("reporter", reporter).Msg("Report filed")
	respondJSON(w, http.StatusCreated, map[string]string{"id": report.ID})
}
