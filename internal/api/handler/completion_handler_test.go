package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/domain"
)

func TestCompletionHandler_Toggle(t *testing.T) {
	userID := uuid.New()
	routineID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		routineID      string
		body           string
		mockService    *MockCompletionService
		wantStatusCode int
	}{
		{
			name:           "valid toggle",
			userID:         userID.String(),
			routineID:      routineID.String(),
			body:           `{"day_index": 0, "exercise_index": 1, "completed": true}`,
			mockService:    &MockCompletionService{},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:           "invalid user UUID",
			userID:         "nope",
			routineID:      routineID.String(),
			body:           `{"day_index": 0, "exercise_index": 1, "completed": true}`,
			mockService:    &MockCompletionService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid routine UUID",
			userID:         userID.String(),
			routineID:      "nope",
			body:           `{"day_index": 0, "exercise_index": 1, "completed": true}`,
			mockService:    &MockCompletionService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "day index out of range",
			userID:         userID.String(),
			routineID:      routineID.String(),
			body:           `{"day_index": 7, "exercise_index": 0, "completed": true}`,
			mockService:    &MockCompletionService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:      "coordinate beyond plan",
			userID:    userID.String(),
			routineID: routineID.String(),
			body:      `{"day_index": 6, "exercise_index": 40, "completed": true}`,
			mockService: &MockCompletionService{
				toggleFunc: func(ctx context.Context, uid, rid uuid.UUID, req *domain.ToggleCompletionRequest) error {
					return fmt.Errorf("exercise index 40 out of range: %w", domain.ErrInvalidInput)
				},
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:      "routine not found",
			userID:    userID.String(),
			routineID: routineID.String(),
			body:      `{"day_index": 0, "exercise_index": 0, "completed": true}`,
			mockService: &MockCompletionService{
				toggleFunc: func(ctx context.Context, uid, rid uuid.UUID, req *domain.ToggleCompletionRequest) error {
					return domain.ErrNotFound
				},
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCompletionHandler(tt.mockService)

			target := "/v1/users/" + tt.userID + "/routines/" + tt.routineID + "/completions"
			req := newRequestWithParams(http.MethodPut, target, bytes.NewBufferString(tt.body), map[string]string{
				"userId":    tt.userID,
				"routineId": tt.routineID,
			})
			rec := httptest.NewRecorder()

			handler.Toggle(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("Toggle() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
		})
	}
}

func TestCompletionHandler_List(t *testing.T) {
	userID := uuid.New()
	routineID := uuid.New()

	mockService := &MockCompletionService{
		listByRoutineFunc: func(ctx context.Context, uid, rid uuid.UUID) ([]domain.ExerciseCompletion, error) {
			return []domain.ExerciseCompletion{
				{RoutineID: rid, DayIndex: 0, ExerciseIndex: 0, Completed: true},
				{RoutineID: rid, DayIndex: 0, ExerciseIndex: 1, Completed: false},
			}, nil
		},
	}
	handler := NewCompletionHandler(mockService)

	target := "/v1/users/" + userID.String() + "/routines/" + routineID.String() + "/completions"
	req := newRequestWithParams(http.MethodGet, target, nil, map[string]string{
		"userId":    userID.String(),
		"routineId": routineID.String(),
	})
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("List() status = %d, want %d, body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var completions []domain.ExerciseCompletion
	if err := json.NewDecoder(rec.Body).Decode(&completions); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(completions) != 2 {
		t.Errorf("List() returned %d completions, want 2", len(completions))
	}
}

func TestCompletionHandler_List_EmptyIsArray(t *testing.T) {
	userID := uuid.New()
	routineID := uuid.New()

	mockService := &MockCompletionService{
		listByRoutineFunc: func(ctx context.Context, uid, rid uuid.UUID) ([]domain.ExerciseCompletion, error) {
			return nil, nil
		},
	}
	handler := NewCompletionHandler(mockService)

	target := "/v1/users/" + userID.String() + "/routines/" + routineID.String() + "/completions"
	req := newRequestWithParams(http.MethodGet, target, nil, map[string]string{
		"userId":    userID.String(),
		"routineId": routineID.String(),
	})
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("List() body = %q, want empty JSON array", got)
	}
}

func TestCompletionHandler_Adherence(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		mockService    *MockCompletionService
		wantStatusCode int
	}{
		{
			name:   "with routines",
			userID: userID.String(),
			mockService: &MockCompletionService{
				adherenceFunc: func(ctx context.Context, id uuid.UUID) (*domain.AdherenceResponse, error) {
					return &domain.AdherenceResponse{
						WeekNumber:           2,
						TotalExercises:       12,
						CompletedExercises:   9,
						CompletionPercentage: 75,
					}, nil
				},
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "no routines yet",
			userID:         userID.String(),
			mockService:    &MockCompletionService{},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid UUID",
			userID:         "nope",
			mockService:    &MockCompletionService{},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCompletionHandler(tt.mockService)

			req := newRequestWithParams(http.MethodGet, "/v1/users/"+tt.userID+"/adherence", nil, map[string]string{"userId": tt.userID})
			rec := httptest.NewRecorder()

			handler.Adherence(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("Adherence() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var response domain.AdherenceResponse
				if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
					t.Errorf("Failed to decode response: %v", err)
				}
				if response.CompletionPercentage != 75 {
					t.Errorf("Adherence() pct = %d, want 75", response.CompletionPercentage)
				}
			}
		})
	}
}
