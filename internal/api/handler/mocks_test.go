package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/service"
)

// MockRoutineService is a mock implementation of RoutineService
type MockRoutineService struct {
	generateFunc       func(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) (*domain.GenerateRoutineResponse, error)
	startSessionFunc   func(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) <-chan service.GenerationEvent
	getLatestFunc      func(ctx context.Context, userID uuid.UUID) (*domain.Routine, error)
	getByIDFunc        func(ctx context.Context, userID, routineID uuid.UUID) (*domain.Routine, error)
	listFunc           func(ctx context.Context, userID uuid.UUID, filter domain.RoutineFilter) (*domain.RoutineListResponse, error)
	submitFeedbackFunc func(ctx context.Context, userID uuid.UUID, req *domain.FeedbackRequest) error
}

func (m *MockRoutineService) Generate(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) (*domain.GenerateRoutineResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, userID, req)
	}
	return &domain.GenerateRoutineResponse{
		Routine:    samplePlan(),
		Source:     domain.RoutineSourceAI,
		WeekNumber: 1,
		RoutineID:  uuid.New(),
	}, nil
}

func (m *MockRoutineService) StartSession(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) <-chan service.GenerationEvent {
	if m.startSessionFunc != nil {
		return m.startSessionFunc(ctx, userID, req)
	}
	events := make(chan service.GenerationEvent, 1)
	close(events)
	return events
}

func (m *MockRoutineService) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Routine, error) {
	if m.getLatestFunc != nil {
		return m.getLatestFunc(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockRoutineService) GetByID(ctx context.Context, userID, routineID uuid.UUID) (*domain.Routine, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, userID, routineID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockRoutineService) List(ctx context.Context, userID uuid.UUID, filter domain.RoutineFilter) (*domain.RoutineListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, filter)
	}
	return &domain.RoutineListResponse{
		Data:       []domain.RoutineResponse{},
		Pagination: domain.PaginationResponse{HasMore: false},
	}, nil
}

func (m *MockRoutineService) SubmitFeedback(ctx context.Context, userID uuid.UUID, req *domain.FeedbackRequest) error {
	if m.submitFeedbackFunc != nil {
		return m.submitFeedbackFunc(ctx, userID, req)
	}
	return nil
}

// MockProfileService is a mock implementation of ProfileService
type MockProfileService struct {
	updateFunc func(ctx context.Context, userID uuid.UUID, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	getFunc    func(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

func (m *MockProfileService) Update(ctx context.Context, userID uuid.UUID, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, userID, req)
	}
	return &domain.Profile{
		UserID:   userID,
		Age:      req.Age,
		WeightKg: req.WeightKg,
		HeightCm: req.HeightCm,
		Gender:   req.Gender,
		Goal:     req.Goal,
		Level:    req.Level,
		Tenure:   req.Tenure,
	}, nil
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

// MockDietService is a mock implementation of DietService
type MockDietService struct {
	generateFunc func(ctx context.Context, userID uuid.UUID, req *domain.GenerateDietRequest) (*domain.GenerateDietResponse, error)
}

func (m *MockDietService) Generate(ctx context.Context, userID uuid.UUID, req *domain.GenerateDietRequest) (*domain.GenerateDietResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, userID, req)
	}
	return &domain.GenerateDietResponse{
		Diet:   sampleDiet(),
		Source: domain.RoutineSourceAI,
	}, nil
}

// MockCompletionService is a mock implementation of CompletionService
type MockCompletionService struct {
	toggleFunc        func(ctx context.Context, userID, routineID uuid.UUID, req *domain.ToggleCompletionRequest) error
	listByRoutineFunc func(ctx context.Context, userID, routineID uuid.UUID) ([]domain.ExerciseCompletion, error)
	adherenceFunc     func(ctx context.Context, userID uuid.UUID) (*domain.AdherenceResponse, error)
}

func (m *MockCompletionService) Toggle(ctx context.Context, userID, routineID uuid.UUID, req *domain.ToggleCompletionRequest) error {
	if m.toggleFunc != nil {
		return m.toggleFunc(ctx, userID, routineID, req)
	}
	return nil
}

func (m *MockCompletionService) ListByRoutine(ctx context.Context, userID, routineID uuid.UUID) ([]domain.ExerciseCompletion, error) {
	if m.listByRoutineFunc != nil {
		return m.listByRoutineFunc(ctx, userID, routineID)
	}
	return []domain.ExerciseCompletion{}, nil
}

func (m *MockCompletionService) Adherence(ctx context.Context, userID uuid.UUID) (*domain.AdherenceResponse, error) {
	if m.adherenceFunc != nil {
		return m.adherenceFunc(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

// MockNotesService is a mock implementation of NotesService
type MockNotesService struct {
	improveFunc func(ctx context.Context, userID uuid.UUID, req *domain.ImproveNotesRequest) (*domain.ImproveNotesResponse, error)
}

func (m *MockNotesService) Improve(ctx context.Context, userID uuid.UUID, req *domain.ImproveNotesRequest) (*domain.ImproveNotesResponse, error) {
	if m.improveFunc != nil {
		return m.improveFunc(ctx, userID, req)
	}
	return &domain.ImproveNotesResponse{Notes: "- trains mornings"}, nil
}

func sampleDiet() *domain.WeeklyDiet {
	return &domain.WeeklyDiet{
		Days: []domain.DietDay{
			{
				Day: "Monday",
				Meals: []domain.Meal{
					{
						Name:        "Breakfast",
						Calories:    520,
						ProteinG:    35,
						CarbsG:      55,
						FatsG:       18,
						Ingredients: "3 eggs, 80g oats, 1 banana",
					},
				},
				TotalCalories: 2400,
				TotalProteinG: 150,
			},
		},
	}
}

func samplePlan() *domain.WeeklyRoutine {
	return &domain.WeeklyRoutine{
		Days: []domain.DayRoutine{
			{
				Day: "Monday - Push",
				Exercises: []domain.Exercise{
					{
						Name:           "Barbell Bench Press",
						SetsReps:       "4 sets x 8 reps (rest 120s)",
						TutorialPoints: []string{"Retract shoulder blades", "Feet planted", "Bar to mid chest"},
					},
				},
			},
		},
	}
}
