package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/api/validation"
	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/llm"
	"github.com/gymbro/gymbro-api/internal/service"
	"github.com/gymbro/gymbro-api/pkg/problem"
)

type DietHandler struct {
	service service.DietService
}

func NewDietHandler(service service.DietService) *DietHandler {
	return &DietHandler{service: service}
}

// Generate handles POST /v1/users/{userId}/diet/generate
// @Summary Generate a weekly meal plan
// @Description Generate a 7-day meal plan from the stored profile. When the user has a routine, meals are synced to the training schedule. Serves a cached plan for an identical request shape unless regenerate is set.
// @Tags diet
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param request body domain.GenerateDietRequest true "Generation options"
// @Success 200 {object} domain.GenerateDietResponse
// @Failure 400 {object} problem.Problem "Invalid request, missing profile or missing API key"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 429 {object} problem.Problem "Generation budget exhausted"
// @Failure 502 {object} problem.Problem "AI provider failed"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/diet/generate [post]
func (h *DietHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.GenerateDietRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	resp, err := h.service.Generate(r.Context(), userID, &req)
	if err != nil {
		writeDietError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeDietError(w http.ResponseWriter, err error) {
	var rle *service.RateLimitError
	switch {
	case errors.As(err, &rle):
		problem.TooManyRequests("Generation budget exhausted, try again later", rle.Limit, rle.Remaining, rle.RetryAfterSeconds).Write(w)
	case errors.Is(err, domain.ErrNotFound):
		problem.NotFound("User not found").Write(w)
	case errors.Is(err, domain.ErrProfileRequired):
		problem.BadRequest("A fitness profile is required before generating a meal plan").Write(w)
	case errors.Is(err, domain.ErrCredentialRequired),
		errors.Is(err, llm.ErrProviderUnavailable):
		problem.BadRequest(err.Error()).Write(w)
	case errors.Is(err, llm.ErrProviderRequest),
		errors.Is(err, llm.ErrProviderResponse):
		problem.BadGateway("AI provider request failed").Write(w)
	default:
		problem.InternalError("Failed to generate meal plan").Write(w)
	}
}
