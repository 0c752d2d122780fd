package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/ratelimit"
)

func newNotesFixture(t *testing.T, limit int) (NotesService, *MockGenerator, uuid.UUID) {
	t.Helper()
	users := NewMockUserRepository()
	userID := uuid.New()
	users.users[userID] = &domain.User{ID: userID}

	generator := &MockGenerator{text: "- avoid deep knee flexion\n- has access to dumbbells only"}
	svc := NewNotesService(users, generator, ratelimit.NewWithCounter(newFakeCounter()),
		[]ratelimit.Scope{{Name: "minute", Limit: limit, Window: time.Minute}})
	return svc, generator, userID
}

func TestImproveNotes(t *testing.T) {
	svc, generator, userID := newNotesFixture(t, 10)

	resp, err := svc.Improve(context.Background(), userID, &domain.ImproveNotesRequest{
		Provider: domain.ProviderOpenAI,
		Notes:    "my knee hurts when i squat low, also i only have dumbbells at home",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Notes, "dumbbells") {
		t.Errorf("unexpected rewrite: %q", resp.Notes)
	}

	prompt := generator.lastText.Prompt
	if !strings.Contains(prompt, "<CLIENT_NOTES>") || !strings.Contains(prompt, "knee hurts") {
		t.Errorf("prompt must wrap the raw notes:\n%s", prompt)
	}
}

func TestImproveNotesEmpty(t *testing.T) {
	svc, _, userID := newNotesFixture(t, 10)

	_, err := svc.Improve(context.Background(), userID, &domain.ImproveNotesRequest{
		Provider: domain.ProviderOpenAI,
		Notes:    "   ",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestImproveNotesRateLimited(t *testing.T) {
	svc, generator, userID := newNotesFixture(t, 1)
	ctx := context.Background()
	req := &domain.ImproveNotesRequest{Provider: domain.ProviderOpenAI, Notes: "squat form help"}

	if _, err := svc.Improve(ctx, userID, req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := svc.Improve(ctx, userID, req)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if generator.textCalls != 1 {
		t.Errorf("generator calls = %d, want 1", generator.textCalls)
	}
}

func TestImproveNotesUnknownUser(t *testing.T) {
	svc, _, _ := newNotesFixture(t, 10)

	_, err := svc.Improve(context.Background(), uuid.New(), &domain.ImproveNotesRequest{
		Provider: domain.ProviderOpenAI,
		Notes:    "anything",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
