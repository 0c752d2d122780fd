package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/api/validation"
	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/llm"
	"github.com/gymbro/gymbro-api/internal/service"
	"github.com/gymbro/gymbro-api/pkg/problem"
)

type RoutineHandler struct {
	service service.RoutineService
}

func NewRoutineHandler(service service.RoutineService) *RoutineHandler {
	return &RoutineHandler{service: service}
}

// Generate handles POST /v1/users/{userId}/routines/generate
// @Summary Generate a weekly routine
// @Description Generate a personalized 7-day plan from the stored profile. Serves a stored routine for the same week when the profile is unchanged, then a cached plan for an identical request shape, and only then calls the AI provider. Set stream=true for server-sent events with progress.
// @Tags routines
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param request body domain.GenerateRoutineRequest true "Generation options"
// @Success 200 {object} domain.GenerateRoutineResponse
// @Failure 400 {object} problem.Problem "Invalid request, missing profile or missing API key"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 429 {object} problem.Problem "Generation budget exhausted"
// @Failure 502 {object} problem.Problem "AI provider failed"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/routines/generate [post]
func (h *RoutineHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.GenerateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	if req.Stream {
		h.generateStream(w, r, userID, &req)
		return
	}

	resp, err := h.service.Generate(r.Context(), userID, &req)
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// generateStream renders the generation session as server-sent events:
// progress events, then exactly one terminal routine or error event.
func (h *RoutineHandler) generateStream(w http.ResponseWriter, r *http.Request, userID uuid.UUID, req *domain.GenerateRoutineRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		problem.InternalError("Streaming not supported").Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range h.service.StartSession(r.Context(), userID, req) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload)
		flusher.Flush()
	}
}

func writeGenerateError(w http.ResponseWriter, err error) {
	var rle *service.RateLimitError
	switch {
	case errors.As(err, &rle):
		problem.TooManyRequests("Generation budget exhausted, try again later", rle.Limit, rle.Remaining, rle.RetryAfterSeconds).Write(w)
	case errors.Is(err, domain.ErrNotFound):
		problem.NotFound("User not found").Write(w)
	case errors.Is(err, domain.ErrProfileRequired):
		problem.BadRequest("A fitness profile is required before generating a routine").Write(w)
	case errors.Is(err, domain.ErrCredentialRequired),
		errors.Is(err, llm.ErrProviderUnavailable):
		problem.BadRequest(err.Error()).Write(w)
	case errors.Is(err, llm.ErrProviderRequest),
		errors.Is(err, llm.ErrProviderResponse):
		problem.BadGateway("AI provider request failed").Write(w)
	default:
		problem.InternalError("Failed to generate routine").Write(w)
	}
}

// List handles GET /v1/users/{userId}/routines
// @Summary List routine history
// @Description Fetch generated routines, newest first, with cursor pagination.
// @Tags routines
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param limit query integer false "Results per page (1-100)" default(20)
// @Param cursor query string false "Cursor from previous response's next_cursor"
// @Success 200 {object} domain.RoutineListResponse
// @Failure 400 {object} problem.Problem "Invalid parameters"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/routines [get]
func (h *RoutineHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var filter domain.RoutineFilter
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			problem.BadRequest("limit must be a positive integer").Write(w)
			return
		}
		filter.Limit = limit
	}
	filter.Cursor = r.URL.Query().Get("cursor")

	resp, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		problem.InternalError("Failed to list routines").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetLatest handles GET /v1/users/{userId}/routines/latest
// @Summary Get the latest routine
// @Tags routines
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Success 200 {object} domain.RoutineResponse
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "No routines yet"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/routines/latest [get]
func (h *RoutineHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	routine, err := h.service.GetLatest(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("No routines generated yet").Write(w)
			return
		}
		problem.InternalError("Failed to get routine").Write(w)
		return
	}

	resp, err := routine.ToResponse()
	if err != nil {
		problem.InternalError("Failed to decode routine").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetByID handles GET /v1/users/{userId}/routines/{routineId}
// @Summary Get one routine
// @Tags routines
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param routineId path string true "Routine UUID" format(uuid)
// @Success 200 {object} domain.RoutineResponse
// @Failure 400 {object} problem.Problem "Invalid IDs"
// @Failure 404 {object} problem.Problem "Routine not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/routines/{routineId} [get]
func (h *RoutineHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}
	routineID, err := uuid.Parse(chi.URLParam(r, "routineId"))
	if err != nil {
		problem.BadRequest("Invalid routine ID format").Write(w)
		return
	}

	routine, err := h.service.GetByID(r.Context(), userID, routineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Routine not found").Write(w)
			return
		}
		problem.InternalError("Failed to get routine").Write(w)
		return
	}

	resp, err := routine.ToResponse()
	if err != nil {
		problem.InternalError("Failed to decode routine").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Feedback handles POST /v1/users/{userId}/routines/feedback
// @Summary Rate a generated routine
// @Description Attach a 1-5 rating to the trace of a generated routine.
// @Tags routines
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param request body domain.FeedbackRequest true "Rating"
// @Success 204 "Feedback recorded"
// @Failure 400 {object} problem.Problem "Invalid request body"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/routines/feedback [post]
func (h *RoutineHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	if err := h.service.SubmitFeedback(r.Context(), userID, &req); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to record feedback").Write(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
