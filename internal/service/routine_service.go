package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/cache"
	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/langfuse"
	"github.com/gymbro/gymbro-api/internal/llm"
	"github.com/gymbro/gymbro-api/internal/ratelimit"
	"github.com/gymbro/gymbro-api/internal/repository"
	"github.com/gymbro/gymbro-api/pkg/pagination"
)

// RoutineOptions carries the tunables the routine service needs.
type RoutineOptions struct {
	// Rate limit scopes applied per user to the generation endpoint
	GenerateScopes []ratelimit.Scope
	// TTL for caching generated plans by profile fingerprint
	CacheTTL time.Duration
	// Overrides the built-in trainer system prompt when non-empty,
	// e.g. with a prompt managed in Langfuse
	SystemPrompt string
}

type RoutineService interface {
	// Generate produces the plan for a week, serving it from the stored
	// routine, the fingerprint cache or a fresh provider call.
	Generate(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) (*domain.GenerateRoutineResponse, error)
	// StartSession runs Generate in the background and emits progress,
	// then exactly one terminal routine or error event, then closes.
	StartSession(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) <-chan GenerationEvent
	GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Routine, error)
	GetByID(ctx context.Context, userID, routineID uuid.UUID) (*domain.Routine, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.RoutineFilter) (*domain.RoutineListResponse, error)
	// SubmitFeedback forwards a plan rating to the tracing backend.
	SubmitFeedback(ctx context.Context, userID uuid.UUID, req *domain.FeedbackRequest) error
}

type routineService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	routineRepo repository.RoutineRepository
	history     HistoryService
	generator   llm.Generator
	limiter     *ratelimit.Limiter
	cache       *cache.Cache
	tracer      langfuse.Client
	opts        RoutineOptions
}

func NewRoutineService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	routineRepo repository.RoutineRepository,
	history HistoryService,
	generator llm.Generator,
	limiter *ratelimit.Limiter,
	responseCache *cache.Cache,
	tracer langfuse.Client,
	opts RoutineOptions,
) RoutineService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &routineService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		routineRepo: routineRepo,
		history:     history,
		generator:   generator,
		limiter:     limiter,
		cache:       responseCache,
		tracer:      tracer,
		opts:        opts,
	}
}

func (s *routineService) Generate(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) (*domain.GenerateRoutineResponse, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if res := s.limiter.CheckAll(ctx, "routine", userID.String(), s.opts.GenerateScopes); !res.Allowed {
		return nil, &RateLimitError{Result: res}
	}

	week, err := s.targetWeek(ctx, userID, req.WeekNumber)
	if err != nil {
		return nil, err
	}

	// A routine already stored for this week is reused as long as the
	// profile it was generated from still matches.
	if !req.Regenerate {
		if existing, err := s.routineRepo.GetByUserAndWeek(ctx, userID, week); err == nil {
			if !profileChanged(existing.Snapshot(), profile) {
				if plan, err := existing.Plan(); err == nil {
					return &domain.GenerateRoutineResponse{
						Routine:    plan,
						Source:     domain.RoutineSourceDB,
						WeekNumber: week,
						RoutineID:  existing.ID,
					}, nil
				}
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	hist := s.history.Build(ctx, userID)
	key := s.fingerprint(profile, week, hist)

	if !req.Regenerate {
		var cached domain.WeeklyRoutine
		if s.cache.GetJSON(ctx, key, &cached) {
			routine, err := s.persist(ctx, userID, week, profile, &cached)
			if err != nil {
				return nil, err
			}
			return &domain.GenerateRoutineResponse{
				Routine:    &cached,
				Source:     domain.RoutineSourceCache,
				WeekNumber: week,
				RoutineID:  routine.ID,
			}, nil
		}
	}

	plan, err := s.generator.GeneratePlan(ctx, llm.PlanInput{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		System:   s.systemPrompt(),
		User:     buildPlanPrompt(profile, week, FormatHistoricalContext(hist)),
	})
	if err != nil {
		return nil, err
	}
	normalizePlan(plan)

	routine, err := s.persist(ctx, userID, week, profile, plan)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, plan, s.opts.CacheTTL)

	return &domain.GenerateRoutineResponse{
		Routine:    plan,
		Source:     domain.RoutineSourceAI,
		WeekNumber: week,
		RoutineID:  routine.ID,
		TraceID:    s.trace(ctx, userID, req.Provider, week, plan),
	}, nil
}

func (s *routineService) systemPrompt() string {
	if s.opts.SystemPrompt != "" {
		return s.opts.SystemPrompt
	}
	return trainerSystemPrompt
}

// loadProfile distinguishes an unknown user (404) from a known user who has
// not filled in a profile yet.
func (s *routineService) loadProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrProfileRequired
}

func (s *routineService) targetWeek(ctx context.Context, userID uuid.UUID, override *int) (int, error) {
	if override != nil {
		return *override, nil
	}
	latest, err := s.routineRepo.GetLatest(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return latest.WeekNumber + 1, nil
}

// fingerprint keys the plan cache on everything that shapes the prompt.
// Credentials are excluded by construction.
func (s *routineService) fingerprint(profile *domain.Profile, week int, hist *domain.HistoricalContext) string {
	fields := map[string]any{
		"age":       profile.Age,
		"weight_kg": profile.WeightKg,
		"height_cm": profile.HeightCm,
		"gender":    string(profile.Gender),
		"goal":      string(profile.Goal),
		"level":     string(profile.Level),
		"tenure":    profile.Tenure,
		"notes":     profile.Notes,
		"week":      week,
	}
	if profile.GoalWeightKg != nil {
		fields["goal_weight_kg"] = *profile.GoalWeightKg
	}
	if profile.GoalDuration != nil {
		fields["goal_duration"] = *profile.GoalDuration
	}
	if hist != nil {
		fields["history"] = hist
	}
	return cache.Fingerprint("routine", fields)
}

func (s *routineService) persist(ctx context.Context, userID uuid.UUID, week int, profile *domain.Profile, plan *domain.WeeklyRoutine) (*domain.Routine, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	snapJSON, err := json.Marshal(profile.Snapshot())
	if err != nil {
		return nil, err
	}

	routine := &domain.Routine{
		ID:              uuid.New(),
		UserID:          userID,
		WeekNumber:      week,
		RoutineJSON:     planJSON,
		ProfileSnapshot: snapJSON,
	}
	if err := s.routineRepo.Create(ctx, routine); err != nil {
		return nil, err
	}

	// A new routine changes the derived adherence view
	s.cache.Bump(ctx, analyticsVersionKey(userID))
	return routine, nil
}

// trace records the generation in Langfuse and returns the trace ID for
// later feedback linking. Best-effort: failures only log.
func (s *routineService) trace(ctx context.Context, userID uuid.UUID, provider domain.Provider, week int, plan *domain.WeeklyRoutine) string {
	if s.tracer == nil || !s.tracer.IsEnabled() {
		return ""
	}
	traceID, err := s.tracer.CreateTrace(ctx, langfuse.TraceInput{
		UserID: userID.String(),
		Name:   "routine-generation",
		Input:  map[string]any{"provider": provider, "week_number": week},
		Output: map[string]any{"days": len(plan.Days), "exercises": plan.ExerciseCount()},
		Tags:   []string{"gymbro", string(provider)},
	})
	if err != nil {
		log.Printf("[routine] langfuse trace failed: %v", err)
		return ""
	}
	return traceID
}

func (s *routineService) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Routine, error) {
	return s.routineRepo.GetLatest(ctx, userID)
}

func (s *routineService) GetByID(ctx context.Context, userID, routineID uuid.UUID) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if routine.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return routine, nil
}

func (s *routineService) List(ctx context.Context, userID uuid.UUID, filter domain.RoutineFilter) (*domain.RoutineListResponse, error) {
	routines, err := s.routineRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	hasMore := len(routines) > limit
	if hasMore {
		routines = routines[:limit]
	}

	resp := &domain.RoutineListResponse{Data: make([]domain.RoutineResponse, 0, len(routines))}
	for i := range routines {
		item, err := routines[i].ToResponse()
		if err != nil {
			return nil, fmt.Errorf("decode routine %s: %w", routines[i].ID, err)
		}
		resp.Data = append(resp.Data, item)
	}

	resp.Pagination.HasMore = hasMore
	if hasMore && len(routines) > 0 {
		last := routines[len(routines)-1]
		cursor := pagination.Cursor{ID: last.ID, CreatedAt: last.CreatedAt}
		resp.Pagination.NextCursor = cursor.Encode()
	}
	return resp, nil
}

func (s *routineService) SubmitFeedback(ctx context.Context, userID uuid.UUID, req *domain.FeedbackRequest) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	if s.tracer == nil || !s.tracer.IsEnabled() {
		log.Printf("[routine] feedback from %s dropped, tracing disabled", userID)
		return nil
	}
	return s.tracer.CreateScore(ctx, langfuse.ScoreInput{
		TraceID: req.TraceID,
		Name:    "user_rating",
		Value:   float64(req.Score),
		Comment: req.Comment,
	})
}

func analyticsVersionKey(userID uuid.UUID) string {
	return "analytics:ver:" + userID.String()
}
