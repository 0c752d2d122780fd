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

type NotesHandler struct {
	service service.NotesService
}

func NewNotesHandler(service service.NotesService) *NotesHandler {
	return &NotesHandler{service: service}
}

// Improve handles POST /v1/users/{userId}/notes/improve
// @Summary Rewrite profile notes
// @Description Rewrite free-text training notes into concise, trainer-usable bullet points.
// @Tags notes
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid)
// @Param request body domain.ImproveNotesRequest true "Notes and provider"
// @Success 200 {object} domain.ImproveNotesResponse
// @Failure 400 {object} problem.Problem "Invalid request or missing API key"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 429 {object} problem.Problem "Rewrite budget exhausted"
// @Failure 502 {object} problem.Problem "AI provider failed"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/notes/improve [post]
func (h *NotesHandler) Improve(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.ImproveNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	resp, err := h.service.Improve(r.Context(), userID, &req)
	if err != nil {
		var rle *service.RateLimitError
		switch {
		case errors.As(err, &rle):
			problem.TooManyRequests("Rewrite budget exhausted, try again later", rle.Limit, rle.Remaining, rle.RetryAfterSeconds).Write(w)
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrInvalidInput),
			errors.Is(err, domain.ErrCredentialRequired),
			errors.Is(err, llm.ErrProviderUnavailable):
			problem.BadRequest(err.Error()).Write(w)
		case errors.Is(err, llm.ErrProviderRequest),
			errors.Is(err, llm.ErrProviderResponse):
			problem.BadGateway("AI provider request failed").Write(w)
		default:
			problem.InternalError("Failed to rewrite notes").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
