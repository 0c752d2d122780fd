package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/llm"
)

// GenerationEvent is one server-sent event of a streaming generation.
type GenerationEvent struct {
	Name string // "progress", "routine" or "error"
	Data any
}

// ProgressData reports synthetic progress while the provider call runs.
type ProgressData struct {
	Pct   int    `json:"pct"`
	Stage string `json:"stage"`
}

// ErrorData is the terminal payload of a failed session.
type ErrorData struct {
	Message string `json:"message"`
}

const (
	progressInterval = 2 * time.Second
	// Elapsed time at which synthetic progress saturates at 99
	progressHorizon = 45 * time.Second
)

func (s *routineService) StartSession(ctx context.Context, userID uuid.UUID, req *domain.GenerateRoutineRequest) <-chan GenerationEvent {
	events := make(chan GenerationEvent, 8)

	go func() {
		defer close(events)

		start := time.Now()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		type outcome struct {
			resp *domain.GenerateRoutineResponse
			err  error
		}
		done := make(chan outcome, 1)
		go func() {
			resp, err := s.Generate(ctx, userID, req)
			done <- outcome{resp: resp, err: err}
		}()

		emit := func(ev GenerationEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(GenerationEvent{Name: "progress", Data: ProgressData{Pct: 1, Stage: "validating"}}) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !emit(GenerationEvent{Name: "progress", Data: progressAt(time.Since(start))}) {
					return
				}
			case out := <-done:
				if out.err != nil {
					emit(GenerationEvent{Name: "error", Data: ErrorData{Message: clientMessage(out.err)}})
					return
				}
				emit(GenerationEvent{Name: "routine", Data: out.resp})
				return
			}
		}
	}()

	return events
}

// progressAt maps elapsed time to a synthetic percentage, capped at 99 so
// only a real result can complete the bar.
func progressAt(elapsed time.Duration) ProgressData {
	pct := 1 + int(elapsed*98/progressHorizon)
	if pct > 99 {
		pct = 99
	}

	stage := "generating plan"
	switch {
	case pct < 10:
		stage = "validating"
	case pct < 25:
		stage = "building prompt"
	case pct >= 90:
		stage = "finalizing"
	}
	return ProgressData{Pct: pct, Stage: stage}
}

// clientMessage renders an error for the SSE stream. Known failures keep
// their message; anything unexpected is masked.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "user not found"
	case errors.Is(err, domain.ErrProfileRequired):
		return "a fitness profile is required before generating a routine"
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrCredentialRequired),
		errors.Is(err, llm.ErrProviderUnavailable),
		errors.Is(err, llm.ErrProviderRequest),
		errors.Is(err, llm.ErrProviderResponse):
		return err.Error()
	default:
		return "routine generation failed"
	}
}
