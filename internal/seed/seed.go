package seed

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymbro/gymbro-api/internal/domain"
)

const seededWeeks = 3

// Run seeds the database with sample users, profiles and routines.
// Safe to call multiple times.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Profile{}, &domain.Routine{}, &domain.ExerciseCompletion{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	goalWeight := 78.0
	users := []struct {
		user    domain.User
		profile domain.Profile
	}{
		{
			user: domain.User{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), DisplayName: "Alex"},
			profile: domain.Profile{
				Age: 29, WeightKg: 82.5, HeightCm: 181,
				Gender: domain.GenderMale, Goal: domain.GoalMuscleGain, Level: domain.LevelRegular,
				Tenure: "2 years on and off",
				Notes:  "Left knee gets cranky on deep squats, prefers morning sessions",
			},
		},
		{
			user: domain.User{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), DisplayName: "Sam"},
			profile: domain.Profile{
				Age: 41, WeightKg: 88, HeightCm: 173,
				Gender: domain.GenderFemale, Goal: domain.GoalFatLoss, Level: domain.LevelBeginner,
				Tenure:       "6 months",
				GoalWeightKg: &goalWeight,
			},
		},
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, u := range users {
		if err := db.Where("id = ?", u.user.ID).FirstOrCreate(&u.user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.user.ID, err)
		}

		u.profile.UserID = u.user.ID
		if err := db.Where("user_id = ?", u.user.ID).FirstOrCreate(&u.profile).Error; err != nil {
			return fmt.Errorf("failed to create profile for %s: %w", u.user.ID, err)
		}

		if err := seedRoutinesForUser(db, u.user.ID, u.profile, rng); err != nil {
			return err
		}
	}

	log.Println("Seed completed")
	return nil
}

func seedRoutinesForUser(db *gorm.DB, userID uuid.UUID, profile domain.Profile, rng *rand.Rand) error {
	planJSON, err := json.Marshal(samplePlan())
	if err != nil {
		return fmt.Errorf("failed to marshal sample plan: %w", err)
	}
	snapshot, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile snapshot: %w", err)
	}

	now := time.Now().UTC()
	for week := 1; week <= seededWeeks; week++ {
		routine := domain.Routine{
			UserID:          userID,
			WeekNumber:      week,
			RoutineJSON:     planJSON,
			ProfileSnapshot: snapshot,
			CreatedAt:       now.AddDate(0, 0, -7*(seededWeeks-week)),
		}

		if err := db.Where("user_id = ? AND week_number = ?", userID, week).FirstOrCreate(&routine).Error; err != nil {
			return fmt.Errorf("failed to create routine week %d: %w", week, err)
		}

		// Past weeks get partial completion so adherence and history have
		// something to chew on. The current week stays untouched.
		if week < seededWeeks {
			if err := seedCompletions(db, routine, rng); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedCompletions(db *gorm.DB, routine domain.Routine, rng *rand.Rand) error {
	var plan domain.WeeklyRoutine
	if err := json.Unmarshal(routine.RoutineJSON, &plan); err != nil {
		return fmt.Errorf("failed to decode seeded plan: %w", err)
	}

	for dayIdx, day := range plan.Days {
		for exIdx := range day.Exercises {
			if rng.Float32() > 0.7 {
				continue
			}
			completion := domain.ExerciseCompletion{
				RoutineID:     routine.ID,
				DayIndex:      dayIdx,
				ExerciseIndex: exIdx,
				Completed:     true,
			}
			err := db.Where("routine_id = ? AND day_index = ? AND exercise_index = ?",
				routine.ID, dayIdx, exIdx).FirstOrCreate(&completion).Error
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
		}
	}
	return nil
}

func samplePlan() *domain.WeeklyRoutine {
	return &domain.WeeklyRoutine{
		Days: []domain.DayRoutine{
			{
				Day: "Monday - Chest & Triceps",
				Exercises: []domain.Exercise{
					{
						Name:           "Barbell Bench Press",
						SetsReps:       "4 sets x 8 reps (rest 120s)",
						YouTubeURLs:    []string{"https://www.youtube.com/watch?v=rT7DgCr-3pg"},
						TutorialPoints: []string{"Retract shoulder blades", "Feet planted on the floor", "Lower the bar to mid chest"},
					},
					{
						Name:           "Incline Dumbbell Press",
						SetsReps:       "3 sets x 10 reps (rest 90s)",
						TutorialPoints: []string{"Set bench to 30 degrees", "Keep wrists stacked over elbows", "Control the descent"},
					},
				},
			},
			{Day: "Tuesday - Rest Day"},
			{
				Day: "Wednesday - Back & Biceps",
				Exercises: []domain.Exercise{
					{
						Name:           "Deadlift",
						SetsReps:       "3 sets x 5 reps (rest 180s)",
						YouTubeURLs:    []string{"https://www.youtube.com/watch?v=op9kVnSso6Q"},
						TutorialPoints: []string{"Brace before every pull", "Keep the bar close to the shins", "Lock out with glutes, not lower back"},
					},
					{
						Name:           "Lat Pulldown",
						SetsReps:       "3 sets x 12 reps (rest 90s)",
						TutorialPoints: []string{"Pull elbows down and back", "Avoid leaning back excessively", "Pause at the bottom"},
					},
				},
			},
			{Day: "Thursday - Rest Day"},
			{
				Day: "Friday - Legs & Shoulders",
				Exercises: []domain.Exercise{
					{
						Name:           "Back Squat",
						SetsReps:       "4 sets x 6 reps (rest 150s)",
						YouTubeURLs:    []string{"https://www.youtube.com/watch?v=ultWZbUMPL8"},
						TutorialPoints: []string{"Brace core before descending", "Knees track over toes", "Hit depth you can control"},
					},
					{
						Name:           "Overhead Press",
						SetsReps:       "3 sets x 8 reps (rest 120s)",
						TutorialPoints: []string{"Squeeze glutes to protect the lower back", "Bar path close to the face", "Full lockout overhead"},
					},
				},
			},
			{Day: "Saturday - Rest Day"},
			{Day: "Sunday - Rest Day"},
		},
	}
}
