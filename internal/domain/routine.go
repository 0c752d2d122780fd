package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Exercise is a single prescribed exercise within a training day.
// @Description One exercise with prescription, tutorial links and form guidance.
type Exercise struct {
	// Exercise name
	Name string `json:"name" example:"Barbell Bench Press"`
	// Sets, reps and optional rest prescription
	SetsReps string `json:"sets_reps" example:"4 sets x 8 reps (rest 120s)"`
	// Up to 3 YouTube tutorial links
	YouTubeURLs []string `json:"youtube_urls"`
	// 3-5 short form/technique cues
	TutorialPoints []string `json:"tutorial_points"`
	// Optional long-form tutorial link
	WikiHowURL string `json:"wikihow_url,omitempty"`
}

// DayRoutine is one day of the weekly plan.
type DayRoutine struct {
	// Day label, e.g. "Monday - Chest & Triceps"
	Day       string     `json:"day" example:"Monday - Chest & Triceps"`
	Exercises []Exercise `json:"exercises"`
}

// WeeklyRoutine is the structured plan returned by a generation provider.
type WeeklyRoutine struct {
	Days []DayRoutine `json:"days"`
}

// ExerciseCount returns the total number of exercises across all days.
func (r *WeeklyRoutine) ExerciseCount() int {
	n := 0
	for _, d := range r.Days {
		n += len(d.Exercises)
	}
	return n
}

// Routine is a persisted generated plan for one week.
type Routine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_routines_user_created" json:"user_id"`
	WeekNumber      int             `gorm:"not null" json:"week_number"`
	RoutineJSON     json.RawMessage `gorm:"type:jsonb;not null" json:"-"`
	ProfileSnapshot json.RawMessage `gorm:"type:jsonb" json:"-"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index:idx_routines_user_created,sort:desc" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Routine) TableName() string {
	return "routines"
}

// Plan decodes the stored routine payload.
func (r *Routine) Plan() (*WeeklyRoutine, error) {
	var plan WeeklyRoutine
	if err := json.Unmarshal(r.RoutineJSON, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Snapshot decodes the stored profile snapshot, or returns nil if absent or
// unparseable. Callers treat nil as "stale, regenerate".
func (r *Routine) Snapshot() *ProfileSnapshot {
	if len(r.ProfileSnapshot) == 0 {
		return nil
	}
	var snap ProfileSnapshot
	if err := json.Unmarshal(r.ProfileSnapshot, &snap); err != nil {
		return nil
	}
	return &snap
}

// Provider selects which AI backend generates the plan.
type Provider string

const (
	ProviderOpenAI    Provider = "OpenAI"
	ProviderAnthropic Provider = "Anthropic"
)

// GenerateRoutineRequest is the request body for the generation endpoint.
// @Description Plan generation request. Profile data is read from the stored profile.
type GenerateRoutineRequest struct {
	// AI provider: OpenAI or Anthropic
	Provider Provider `json:"provider" validate:"required,oneof=OpenAI Anthropic" example:"OpenAI"`
	// Optional caller-supplied API key; takes precedence over the server key
	APIKey string `json:"api_key,omitempty" validate:"omitempty,max=512"`
	// Optional target week number; defaults to the week after the latest routine
	WeekNumber *int `json:"week_number,omitempty" validate:"omitempty,min=1,max=1000"`
	// Force a fresh provider call, bypassing cache and plan reuse
	Regenerate bool `json:"regenerate,omitempty"`
	// Stream progress over server-sent events instead of a single JSON response
	Stream bool `json:"stream,omitempty"`
}

// RoutineSource describes where a returned plan came from.
type RoutineSource string

const (
	RoutineSourceAI    RoutineSource = "ai"
	RoutineSourceCache RoutineSource = "cache"
	RoutineSourceDB    RoutineSource = "db"
)

// GenerateRoutineResponse is the non-streaming generation response.
type GenerateRoutineResponse struct {
	Routine    *WeeklyRoutine `json:"routine"`
	Source     RoutineSource  `json:"source" example:"ai"`
	WeekNumber int            `json:"week_number" example:"3"`
	RoutineID  uuid.UUID      `json:"routine_id"`
	// Trace ID for feedback linking (present when tracing is enabled)
	TraceID string `json:"trace_id,omitempty"`
}

// RoutineResponse is the response body for persisted routine endpoints.
type RoutineResponse struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	WeekNumber int            `json:"week_number"`
	Routine    *WeeklyRoutine `json:"routine"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (r *Routine) ToResponse() (RoutineResponse, error) {
	plan, err := r.Plan()
	if err != nil {
		return RoutineResponse{}, err
	}
	return RoutineResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		WeekNumber: r.WeekNumber,
		Routine:    plan,
		CreatedAt:  r.CreatedAt,
	}, nil
}

// RoutineListResponse is the response body for listing routines.
// @Description Paginated routine history.
type RoutineListResponse struct {
	Data       []RoutineResponse  `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse contains pagination metadata.
// @Description Cursor-based pagination info.
type PaginationResponse struct {
	// Cursor for fetching the next page (empty if no more pages)
	NextCursor string `json:"next_cursor,omitempty"`
	// True if more results are available
	HasMore bool `json:"has_more" example:"true"`
}

// RoutineFilter contains filter parameters for listing routines.
type RoutineFilter struct {
	Limit  int
	Cursor string
}

// ExerciseCompletion records whether one exercise of a routine was completed.
type ExerciseCompletion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoutineID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_coord,priority:1" json:"routine_id"`
	DayIndex      int       `gorm:"not null;uniqueIndex:idx_completion_coord,priority:2" json:"day_index"`
	ExerciseIndex int       `gorm:"not null;uniqueIndex:idx_completion_coord,priority:3" json:"exercise_index"`
	Completed     bool      `gorm:"not null" json:"completed"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Routine Routine `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ExerciseCompletion) TableName() string {
	return "exercise_completions"
}

// ToggleCompletionRequest marks one exercise completed or not.
// @Description Completion toggle for a single exercise coordinate.
type ToggleCompletionRequest struct {
	DayIndex      int  `json:"day_index" validate:"min=0,max=6"`
	ExerciseIndex int  `json:"exercise_index" validate:"min=0,max=49"`
	Completed     bool `json:"completed"`
}

// AdherenceResponse summarizes completion of the latest routine.
type AdherenceResponse struct {
	WeekNumber           int      `json:"week_number"`
	TotalExercises       int      `json:"total_exercises"`
	CompletedExercises   int      `json:"completed_exercises"`
	CompletionPercentage int      `json:"completion_percentage"`
	Struggling           []string `json:"struggling"`
	Excelling            []string `json:"excelling"`
}

// ImproveNotesRequest is the request body for the notes rewrite endpoint.
type ImproveNotesRequest struct {
	Provider Provider `json:"provider" validate:"required,oneof=OpenAI Anthropic"`
	APIKey   string   `json:"api_key,omitempty" validate:"omitempty,max=512"`
	Notes    string   `json:"notes" validate:"max=2000"`
}

// ImproveNotesResponse carries the rewritten notes.
type ImproveNotesResponse struct {
	Notes string `json:"notes"`
}

// FeedbackRequest is the request body for plan feedback.
// @Description User rating for a generated plan, linked by trace ID.
type FeedbackRequest struct {
	TraceID string `json:"trace_id" validate:"required,max=64"`
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}
