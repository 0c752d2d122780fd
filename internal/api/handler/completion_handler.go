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

type CompletionHandler struct {
	service service.CompletionService
}

func NewCompletionHandler(service service.CompletionService) *CompletionHandler {
	return &CompletionHandler{service: service}
}

// Toggle handles PUT /v1/users/{userId}/routines/{routineId}/completions
// @Summary Mark an exercise completed or not
// @Description Set the completion state for one exercise, addressed by day and exercise index within the routine.
// @Tags completions
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param routineId path string true "Routine UUID" format(uuid)
// @Param request body domain.ToggleCompletionRequest true "Completion state"
// @Success 204 "Completion recorded"
// @Failure 400 {object} problem.Problem "Invalid body or coordinate out of range"
// @Failure 404 {object} problem.Problem "Routine not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/routines/{routineId}/completions [put]
func (h *CompletionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, routineID, ok := parseUserAndRoutine(w, r)
	if !ok {
		return
	}

	var req domain.ToggleCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	if err := h.service.Toggle(r.Context(), userID, routineID, &req); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("Routine not found").Write(w)
		case errors.Is(err, domain.ErrInvalidInput):
			problem.BadRequest(err.Error()).Write(w)
		default:
			problem.InternalError("Failed to record completion").Write(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /v1/users/{userId}/routines/{routineId}/completions
// @Summary List completions for a routine
// @Tags completions
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param routineId path string true "Routine UUID" format(uuid)
// @Success 200 {array} domain.ExerciseCompletion
// @Failure 400 {object} problem.Problem "Invalid IDs"
// @Failure 404 {object} problem.Problem "Routine not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/routines/{routineId}/completions [get]
func (h *CompletionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, routineID, ok := parseUserAndRoutine(w, r)
	if !ok {
		return
	}

	completions, err := h.service.ListByRoutine(r.Context(), userID, routineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Routine not found").Write(w)
			return
		}
		problem.InternalError("Failed to list completions").Write(w)
		return
	}

	if completions == nil {
		completions = []domain.ExerciseCompletion{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(completions)
}

// Adherence handles GET /v1/users/{userId}/adherence
// @Summary Adherence summary for the latest routine
// @Description Completion statistics for the most recent routine, cached briefly and invalidated on every toggle.
// @Tags completions
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.AdherenceResponse
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "No routines yet"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/adherence [get]
func (h *CompletionHandler) Adherence(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	resp, err := h.service.Adherence(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("No routines generated yet").Write(w)
			return
		}
		problem.InternalError("Failed to compute adherence").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func parseUserAndRoutine(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return uuid.Nil, uuid.Nil, false
	}
	routineID, err := uuid.Parse(chi.URLParam(r, "routineId"))
	if err != nil {
		problem.BadRequest("Invalid routine ID format").Write(w)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, routineID, true
}
