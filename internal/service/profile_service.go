package service

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/repository"
)

type ProfileService interface {
	// Update creates the profile on first save and replaces it afterwards.
	Update(ctx context.Context, userID uuid.UUID, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

type profileService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

func NewProfileService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{userRepo: userRepo, profileRepo: profileRepo}
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	profile := &domain.Profile{
		UserID:       userID,
		Age:          req.Age,
		WeightKg:     req.WeightKg,
		HeightCm:     req.HeightCm,
		Gender:       req.Gender,
		Goal:         req.Goal,
		Level:        req.Level,
		Tenure:       req.Tenure,
		GoalWeightKg: req.GoalWeightKg,
		GoalDuration: req.GoalDuration,
		Notes:        req.Notes,
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// changeTolerance is the band within which weight-like fields count as
// unchanged. Scale noise of under a kilogram should not invalidate a plan.
const changeTolerance = 1.0

// profileChanged reports whether the profile drifted enough since the
// snapshot to make the plan generated from it stale. A missing or
// unparseable snapshot always counts as changed.
func profileChanged(snap *domain.ProfileSnapshot, p *domain.Profile) bool {
	if snap == nil {
		return true
	}
	if snap.Age != p.Age || snap.Gender != p.Gender || snap.Goal != p.Goal ||
		snap.Level != p.Level || snap.Tenure != p.Tenure || snap.Notes != p.Notes {
		return true
	}
	if math.Abs(snap.WeightKg-p.WeightKg) > changeTolerance {
		return true
	}
	if math.Abs(snap.HeightCm-p.HeightCm) > changeTolerance {
		return true
	}
	return !floatPtrWithin(snap.GoalWeightKg, p.GoalWeightKg, changeTolerance)
}

func floatPtrWithin(a, b *float64, tolerance float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(*a-*b) <= tolerance
}
