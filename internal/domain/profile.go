package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the user's self-reported gender.
// @Description Gender option used for plan personalization.
type Gender string

const (
	GenderMale        Gender = "Male"
	GenderFemale      Gender = "Female"
	GenderNonBinary   Gender = "Non-binary"
	GenderUndisclosed Gender = "Prefer not to say"
)

// Goal is the user's primary training goal.
// @Description Primary training goal driving split and intensity selection.
type Goal string

const (
	GoalGeneralFitness Goal = "General fitness"
	GoalFatLoss        Goal = "Fat loss"
	GoalMuscleGain     Goal = "Muscle gain"
	GoalStrength       Goal = "Strength"
	GoalRecomposition  Goal = "Recomposition"
	GoalEndurance      Goal = "Endurance"
)

// Level is the user's training experience level.
type Level string

const (
	LevelBeginner Level = "Beginner"
	LevelRegular  Level = "Regular"
	LevelExpert   Level = "Expert"
)

// Profile holds the fitness profile a routine is generated from.
type Profile struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Age          int       `gorm:"type:smallint;not null" json:"age"`
	WeightKg     float64   `gorm:"not null" json:"weight_kg"`
	HeightCm     float64   `gorm:"not null" json:"height_cm"`
	Gender       Gender    `gorm:"type:varchar(32);not null" json:"gender"`
	Goal         Goal      `gorm:"type:varchar(32);not null" json:"goal"`
	Level        Level     `gorm:"type:varchar(16);not null" json:"level"`
	Tenure       string    `gorm:"type:varchar(100);not null" json:"tenure"`
	GoalWeightKg *float64  `json:"goal_weight_kg,omitempty"`
	GoalDuration *string   `gorm:"type:varchar(100)" json:"goal_duration,omitempty"`
	Notes        string    `gorm:"type:text" json:"notes"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// UpdateProfileRequest is the request body for creating/updating a profile.
// @Description Fitness profile payload.
type UpdateProfileRequest struct {
	// Age in years
	Age int `json:"age" validate:"required,min=13,max=120" example:"29"`
	// Current body weight in kilograms
	WeightKg float64 `json:"weight_kg" validate:"required,min=20,max=400" example:"82.5"`
	// Height in centimeters
	HeightCm float64 `json:"height_cm" validate:"required,min=50,max=300" example:"181"`
	// Gender
	Gender Gender `json:"gender" validate:"required,oneof=Male Female Non-binary 'Prefer not to say'" example:"Male"`
	// Primary training goal
	Goal Goal `json:"goal" validate:"required,oneof='General fitness' 'Fat loss' 'Muscle gain' Strength Recomposition Endurance" example:"Muscle gain"`
	// Experience level
	Level Level `json:"level" validate:"required,oneof=Beginner Regular Expert" example:"Regular"`
	// Free-text training history, e.g. "2 years on and off"
	Tenure string `json:"tenure" validate:"required,min=1,max=100" example:"2 years"`
	// Optional target body weight in kilograms
	GoalWeightKg *float64 `json:"goal_weight_kg,omitempty" validate:"omitempty,min=20,max=400" example:"78"`
	// Optional timeframe for the goal
	GoalDuration *string `json:"goal_duration,omitempty" validate:"omitempty,max=100" example:"6 months"`
	// Free-text constraints: injuries, equipment, schedule. Treated as untrusted data.
	Notes string `json:"notes" validate:"max=2000"`
}

// ProfileSnapshot is an immutable copy of the significant profile fields,
// stored alongside a generated routine and compared later for staleness.
type ProfileSnapshot struct {
	Age          int      `json:"age"`
	WeightKg     float64  `json:"weight_kg"`
	HeightCm     float64  `json:"height_cm"`
	Gender       Gender   `json:"gender"`
	Goal         Goal     `json:"goal"`
	Level        Level    `json:"level"`
	Tenure       string   `json:"tenure"`
	GoalWeightKg *float64 `json:"goal_weight_kg,omitempty"`
	Notes        string   `json:"notes"`
}

// Snapshot copies the significant fields used for staleness detection.
func (p *Profile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		Age:          p.Age,
		WeightKg:     p.WeightKg,
		HeightCm:     p.HeightCm,
		Gender:       p.Gender,
		Goal:         p.Goal,
		Level:        p.Level,
		Tenure:       p.Tenure,
		GoalWeightKg: p.GoalWeightKg,
		Notes:        p.Notes,
	}
}

// ProfileResponse is the response body for profile endpoints.
type ProfileResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Age          int       `json:"age"`
	WeightKg     float64   `json:"weight_kg"`
	HeightCm     float64   `json:"height_cm"`
	Gender       Gender    `json:"gender"`
	Goal         Goal      `json:"goal"`
	Level        Level     `json:"level"`
	Tenure       string    `json:"tenure"`
	GoalWeightKg *float64  `json:"goal_weight_kg,omitempty"`
	GoalDuration *string   `json:"goal_duration,omitempty"`
	Notes        string    `json:"notes"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Profile) ToResponse() ProfileResponse {
	return ProfileResponse{
		UserID:       p.UserID,
		Age:          p.Age,
		WeightKg:     p.WeightKg,
		HeightCm:     p.HeightCm,
		Gender:       p.Gender,
		Goal:         p.Goal,
		Level:        p.Level,
		Tenure:       p.Tenure,
		GoalWeightKg: p.GoalWeightKg,
		GoalDuration: p.GoalDuration,
		Notes:        p.Notes,
		UpdatedAt:    p.UpdatedAt,
	}
}
