package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gymbro/gymbro-api/internal/domain"
)

type CompletionRepository interface {
	// Set upserts the completion state for one exercise coordinate.
	Set(ctx context.Context, completion *domain.ExerciseCompletion) error
	ListByRoutine(ctx context.Context, routineID uuid.UUID) ([]domain.ExerciseCompletion, error)
}

type completionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) Set(ctx context.Context, completion *domain.ExerciseCompletion) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "routine_id"}, {Name: "day_index"}, {Name: "exercise_index"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
		}).
		Create(completion).Error
}

func (r *completionRepository) ListByRoutine(ctx context.Context, routineID uuid.UUID) ([]domain.ExerciseCompletion, error) {
	var completions []domain.ExerciseCompletion
	err := r.db.WithContext(ctx).
		Where("routine_id = ?", routineID).
		Order("day_index ASC, exercise_index ASC").
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}
