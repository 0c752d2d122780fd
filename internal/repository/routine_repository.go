package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/pkg/pagination"
)

type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Routine, error)
	// GetLatest returns the most recently created routine for the user.
	GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Routine, error)
	// GetByUserAndWeek returns the newest routine stored for a week number.
	GetByUserAndWeek(ctx context.Context, userID uuid.UUID, weekNumber int) (*domain.Routine, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.RoutineFilter) ([]domain.Routine, error)
}

type routineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) RoutineRepository {
	return &routineRepository{db: db}
}

func (r *routineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	return r.db.WithContext(ctx).Create(routine).Error
}

func (r *routineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.db.WithContext(ctx).First(&routine, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

func (r *routineRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&routine).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

func (r *routineRepository) GetByUserAndWeek(ctx context.Context, userID uuid.UUID, weekNumber int) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_number = ?", userID, weekNumber).
		Order("created_at DESC").
		First(&routine).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

func (r *routineRepository) List(ctx context.Context, userID uuid.UUID, filter domain.RoutineFilter) ([]domain.Routine, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")

	// Apply cursor pagination
	if filter.Cursor != "" {
		cursor, err := pagination.DecodeCursor(filter.Cursor)
		if err == nil && cursor != nil {
			// For DESC order: get records created before the cursor,
			// or at the same instant with a smaller id
			query = query.Where(
				"(created_at < ?) OR (created_at = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
	}

	// Fetch one extra to determine if there are more results
	limit := pagination.NormalizeLimit(filter.Limit)
	query = query.Limit(limit + 1)

	var routines []domain.Routine
	if err := query.Find(&routines).Error; err != nil {
		return nil, err
	}

	return routines, nil
}
