package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/repository"
)

// maxHighlightedExercises caps the struggling/excelling lists so the prompt
// stays small for users with large plans.
const maxHighlightedExercises = 5

// HistoryService derives adherence context from the most recent routine.
type HistoryService interface {
	// Build returns nil when no history exists or it cannot be derived.
	// History is an enhancement to the prompt, never a hard dependency.
	Build(ctx context.Context, userID uuid.UUID) *domain.HistoricalContext
}

type historyService struct {
	routineRepo    repository.RoutineRepository
	completionRepo repository.CompletionRepository
}

func NewHistoryService(routineRepo repository.RoutineRepository, completionRepo repository.CompletionRepository) HistoryService {
	return &historyService{routineRepo: routineRepo, completionRepo: completionRepo}
}

func (s *historyService) Build(ctx context.Context, userID uuid.UUID) *domain.HistoricalContext {
	latest, err := s.routineRepo.GetLatest(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("[history] load latest routine for %s failed: %v", userID, err)
		}
		return nil
	}

	plan, err := latest.Plan()
	if err != nil {
		log.Printf("[history] decode routine %s failed: %v", latest.ID, err)
		return nil
	}

	completions, err := s.completionRepo.ListByRoutine(ctx, latest.ID)
	if err != nil {
		log.Printf("[history] load completions for %s failed: %v", latest.ID, err)
		return nil
	}

	completed := make(map[[2]int]bool, len(completions))
	for _, c := range completions {
		if c.Completed {
			completed[[2]int{c.DayIndex, c.ExerciseIndex}] = true
		}
	}

	hc := &domain.HistoricalContext{WeekNumber: latest.WeekNumber}
	for di, day := range plan.Days {
		for ei, ex := range day.Exercises {
			hc.TotalExercises++
			if completed[[2]int{di, ei}] {
				hc.CompletedExercises++
				if len(hc.Excelling) < maxHighlightedExercises {
					hc.Excelling = append(hc.Excelling, ex.Name)
				}
			} else if len(hc.Struggling) < maxHighlightedExercises {
				hc.Struggling = append(hc.Struggling, ex.Name)
			}
		}
	}

	if hc.TotalExercises > 0 {
		hc.CompletionPercentage = int(math.Round(100 * float64(hc.CompletedExercises) / float64(hc.TotalExercises)))
	}
	return hc
}

// Adherence bands that decide how the next week progresses.
const (
	overloadThreshold = 80
	deloadThreshold   = 50
)

// FormatHistoricalContext renders the adherence summary as a prompt block.
// Returns "" when there is nothing useful to say.
func FormatHistoricalContext(hc *domain.HistoricalContext) string {
	if hc == nil || hc.TotalExercises == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Previous week adherence (week %d): %d of %d exercises completed (%d%%).\n",
		hc.WeekNumber, hc.CompletedExercises, hc.TotalExercises, hc.CompletionPercentage)

	switch {
	case hc.CompletionPercentage >= overloadThreshold:
		b.WriteString("Adherence was high. Apply progressive overload: increase load or volume slightly, especially on the exercises that went well.\n")
	case hc.CompletionPercentage < deloadThreshold:
		b.WriteString("Adherence was low. Deload: reduce weekly volume and simplify the plan so the client can rebuild consistency.\n")
	default:
		b.WriteString("Adherence was moderate. Keep overall volume similar and make targeted adjustments rather than big changes.\n")
	}

	if len(hc.Struggling) > 0 {
		fmt.Fprintf(&b, "The client did not complete: %s. Consider easier substitutions or lighter prescriptions for these.\n",
			strings.Join(hc.Struggling, ", "))
	}
	if len(hc.Excelling) > 0 {
		fmt.Fprintf(&b, "The client completed: %s. These can progress.\n", strings.Join(hc.Excelling, ", "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
