package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/llm"
	"github.com/gymbro/gymbro-api/internal/ratelimit"
	"github.com/gymbro/gymbro-api/internal/repository"
)

// NotesService rewrites free-text profile notes into trainer-usable form.
type NotesService interface {
	Improve(ctx context.Context, userID uuid.UUID, req *domain.ImproveNotesRequest) (*domain.ImproveNotesResponse, error)
}

type notesService struct {
	userRepo  repository.UserRepository
	generator llm.Generator
	limiter   *ratelimit.Limiter
	scopes    []ratelimit.Scope
}

func NewNotesService(userRepo repository.UserRepository, generator llm.Generator, limiter *ratelimit.Limiter, scopes []ratelimit.Scope) NotesService {
	return &notesService{userRepo: userRepo, generator: generator, limiter: limiter, scopes: scopes}
}

func (s *notesService) Improve(ctx context.Context, userID uuid.UUID, req *domain.ImproveNotesRequest) (*domain.ImproveNotesResponse, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	if strings.TrimSpace(req.Notes) == "" {
		return nil, fmt.Errorf("%w: notes are empty", domain.ErrInvalidInput)
	}

	if res := s.limiter.CheckAll(ctx, "notes", userID.String(), s.scopes); !res.Allowed {
		return nil, &RateLimitError{Result: res}
	}

	rewritten, err := s.generator.RewriteText(ctx, llm.TextInput{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Prompt:   buildNotesPrompt(req.Notes),
	})
	if err != nil {
		return nil, err
	}

	return &domain.ImproveNotesResponse{Notes: rewritten}, nil
}
