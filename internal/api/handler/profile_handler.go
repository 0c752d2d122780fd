package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/api/validation"
	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/service"
	"github.com/gymbro/gymbro-api/pkg/problem"
)

type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Update handles PUT /v1/users/{userId}/profile
// @Summary Create or replace the fitness profile
// @Description Save the profile routines are generated from. Notes are free text and treated as data, never as instructions.
// @Tags profile
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param request body domain.UpdateProfileRequest true "Profile data"
// @Success 200 {object} domain.ProfileResponse
// @Failure 400 {object} problem.Problem "Invalid request body"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	profile, err := h.service.Update(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to save profile").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile.ToResponse())
}

// Get handles GET /v1/users/{userId}/profile
// @Summary Get the fitness profile
// @Tags profile
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.ProfileResponse
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "Profile not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Profile not found").Write(w)
			return
		}
		problem.InternalError("Failed to get profile").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile.ToResponse())
}
