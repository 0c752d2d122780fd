package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/cache"
	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/repository"
)

// CompletionService tracks per-exercise completion and the adherence view
// derived from it.
type CompletionService interface {
	// Toggle sets the completion state for one exercise coordinate of a
	// routine owned by the user.
	Toggle(ctx context.Context, userID, routineID uuid.UUID, req *domain.ToggleCompletionRequest) error
	ListByRoutine(ctx context.Context, userID, routineID uuid.UUID) ([]domain.ExerciseCompletion, error)
	// Adherence summarizes completion of the latest routine, served through
	// a short-lived cache invalidated by a per-user version counter.
	Adherence(ctx context.Context, userID uuid.UUID) (*domain.AdherenceResponse, error)
}

type completionService struct {
	routineRepo    repository.RoutineRepository
	completionRepo repository.CompletionRepository
	history        HistoryService
	cache          *cache.Cache
	cacheTTL       time.Duration
}

func NewCompletionService(
	routineRepo repository.RoutineRepository,
	completionRepo repository.CompletionRepository,
	history HistoryService,
	responseCache *cache.Cache,
	cacheTTL time.Duration,
) CompletionService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &completionService{
		routineRepo:    routineRepo,
		completionRepo: completionRepo,
		history:        history,
		cache:          responseCache,
		cacheTTL:       cacheTTL,
	}
}

func (s *completionService) Toggle(ctx context.Context, userID, routineID uuid.UUID, req *domain.ToggleCompletionRequest) error {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return err
	}
	if routine.UserID != userID {
		return domain.ErrNotFound
	}

	// The coordinate must exist in the stored plan
	plan, err := routine.Plan()
	if err != nil {
		return err
	}
	if req.DayIndex >= len(plan.Days) {
		return fmt.Errorf("%w: day_index %d out of range", domain.ErrInvalidInput, req.DayIndex)
	}
	if req.ExerciseIndex >= len(plan.Days[req.DayIndex].Exercises) {
		return fmt.Errorf("%w: exercise_index %d out of range", domain.ErrInvalidInput, req.ExerciseIndex)
	}

	err = s.completionRepo.Set(ctx, &domain.ExerciseCompletion{
		ID:            uuid.New(),
		RoutineID:     routineID,
		DayIndex:      req.DayIndex,
		ExerciseIndex: req.ExerciseIndex,
		Completed:     req.Completed,
	})
	if err != nil {
		return err
	}

	s.cache.Bump(ctx, analyticsVersionKey(userID))
	return nil
}

func (s *completionService) ListByRoutine(ctx context.Context, userID, routineID uuid.UUID) ([]domain.ExerciseCompletion, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if routine.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.completionRepo.ListByRoutine(ctx, routineID)
}

func (s *completionService) Adherence(ctx context.Context, userID uuid.UUID) (*domain.AdherenceResponse, error) {
	// The version counter makes stale entries unreachable after any toggle
	// or new routine, without explicit deletes.
	version := s.cache.Version(ctx, analyticsVersionKey(userID))
	key := fmt.Sprintf("adherence:%s:v%d", userID, version)

	var cached domain.AdherenceResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	hc := s.history.Build(ctx, userID)
	if hc == nil {
		if _, err := s.routineRepo.GetLatest(ctx, userID); errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.New("adherence could not be derived")
	}

	resp := &domain.AdherenceResponse{
		WeekNumber:           hc.WeekNumber,
		TotalExercises:       hc.TotalExercises,
		CompletedExercises:   hc.CompletedExercises,
		CompletionPercentage: hc.CompletionPercentage,
		Struggling:           hc.Struggling,
		Excelling:            hc.Excelling,
	}
	s.cache.SetJSON(ctx, key, resp, s.cacheTTL)
	return resp, nil
}
