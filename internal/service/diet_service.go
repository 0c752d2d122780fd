package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/cache"
	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/langfuse"
	"github.com/gymbro/gymbro-api/internal/llm"
	"github.com/gymbro/gymbro-api/internal/ratelimit"
	"github.com/gymbro/gymbro-api/internal/repository"
)

// DietOptions carries the tunables the diet service needs.
type DietOptions struct {
	// Rate limit scopes applied per user to the generation endpoint
	GenerateScopes []ratelimit.Scope
	// TTL for caching generated meal plans by profile fingerprint
	CacheTTL time.Duration
}

type DietService interface {
	// Generate produces a weekly meal plan from the stored profile, serving
	// it from the fingerprint cache or a fresh provider call. Meal plans are
	// not persisted; clients regenerate them at will.
	Generate(ctx context.Context, userID uuid.UUID, req *domain.GenerateDietRequest) (*domain.GenerateDietResponse, error)
}

type dietService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	routineRepo repository.RoutineRepository
	generator   llm.Generator
	limiter     *ratelimit.Limiter
	cache       *cache.Cache
	tracer      langfuse.Client
	opts        DietOptions
}

func NewDietService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	routineRepo repository.RoutineRepository,
	generator llm.Generator,
	limiter *ratelimit.Limiter,
	responseCache *cache.Cache,
	tracer langfuse.Client,
	opts DietOptions,
) DietService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &dietService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		routineRepo: routineRepo,
		generator:   generator,
		limiter:     limiter,
		cache:       responseCache,
		tracer:      tracer,
		opts:        opts,
	}
}

func (s *dietService) Generate(ctx context.Context, userID uuid.UUID, req *domain.GenerateDietRequest) (*domain.GenerateDietResponse, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if res := s.limiter.CheckAll(ctx, "diet", userID.String(), s.opts.GenerateScopes); !res.Allowed {
		return nil, &RateLimitError{Result: res}
	}

	trainingDays := s.trainingDays(ctx, userID)
	key := s.fingerprint(profile, trainingDays)

	if !req.Regenerate {
		var cached domain.WeeklyDiet
		if s.cache.GetJSON(ctx, key, &cached) {
			return &domain.GenerateDietResponse{
				Diet:   &cached,
				Source: domain.RoutineSourceCache,
			}, nil
		}
	}

	diet, err := s.generator.GenerateDiet(ctx, llm.PlanInput{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		System:   nutritionistSystemPrompt,
		User:     buildDietPrompt(profile, trainingDays),
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, diet, s.opts.CacheTTL)

	return &domain.GenerateDietResponse{
		Diet:    diet,
		Source:  domain.RoutineSourceAI,
		TraceID: s.trace(ctx, userID, req.Provider, diet),
	}, nil
}

// loadProfile distinguishes an unknown user (404) from a known user who has
// not filled in a profile yet.
func (s *dietService) loadProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
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

// trainingDays lists the day labels of the latest stored routine so the meal
// plan can sync carbohydrate timing with training. Best-effort: a user with
// no routine just gets a schedule-free diet.
func (s *dietService) trainingDays(ctx context.Context, userID uuid.UUID) []string {
	latest, err := s.routineRepo.GetLatest(ctx, userID)
	if err != nil {
		return nil
	}
	plan, err := latest.Plan()
	if err != nil {
		return nil
	}
	days := make([]string, 0, len(plan.Days))
	for _, day := range plan.Days {
		days = append(days, day.Day)
	}
	return days
}

// fingerprint keys the diet cache on everything that shapes the prompt.
// Credentials are excluded by construction.
func (s *dietService) fingerprint(profile *domain.Profile, trainingDays []string) string {
	fields := map[string]any{
		"age":       profile.Age,
		"weight_kg": profile.WeightKg,
		"height_cm": profile.HeightCm,
		"gender":    string(profile.Gender),
		"goal":      string(profile.Goal),
		"level":     string(profile.Level),
		"notes":     profile.Notes,
	}
	if profile.GoalWeightKg != nil {
		fields["goal_weight_kg"] = *profile.GoalWeightKg
	}
	if profile.GoalDuration != nil {
		fields["goal_duration"] = *profile.GoalDuration
	}
	if len(trainingDays) > 0 {
		fields["training_days"] = trainingDays
	}
	return cache.Fingerprint("diet", fields)
}

// trace records the generation in Langfuse and returns the trace ID for
// later feedback linking. Best-effort: failures only log.
func (s *dietService) trace(ctx context.Context, userID uuid.UUID, provider domain.Provider, diet *domain.WeeklyDiet) string {
	if s.tracer == nil || !s.tracer.IsEnabled() {
		return ""
	}
	meals := 0
	for _, day := range diet.Days {
		meals += len(day.Meals)
	}
	traceID, err := s.tracer.CreateTrace(ctx, langfuse.TraceInput{
		UserID: userID.String(),
		Name:   "diet-generation",
		Input:  map[string]any{"provider": provider},
		Output: map[string]any{"days": len(diet.Days), "meals": meals},
		Tags:   []string{"gymbro", string(provider)},
	})
	if err != nil {
		log.Printf("[diet] langfuse trace failed: %v", err)
		return ""
	}
	return traceID
}
