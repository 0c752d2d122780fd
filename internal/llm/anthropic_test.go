package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gymbro/gymbro-api/internal/domain"
)

func testAnthropic(t *testing.T, handler http.HandlerFunc) *anthropicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := newAnthropicClient(Options{AnthropicKey: "sk-ant-test", Timeout: 5 * time.Second, MaxAttempts: 1})
	c.baseURL = srv.URL
	return c
}

func TestAnthropicGeneratePlan(t *testing.T) {
	var gotVersion, gotKey string
	var gotReq anthropicRequest

	c := testAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": `{"days":[{"day":"Monday","exercises":[{"name":"Deadlift","sets_reps":"3x5"}]}]}`},
			},
		})
	})

	plan, err := c.generatePlan(context.Background(), PlanInput{
		Provider: domain.ProviderAnthropic,
		System:   "be a trainer",
		User:     "make a plan",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Days) != 1 || plan.Days[0].Exercises[0].Name != "Deadlift" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if gotVersion != anthropicVersion {
		t.Fatalf("anthropic-version = %q", gotVersion)
	}
	if gotKey != "sk-ant-test" {
		t.Fatalf("x-api-key = %q", gotKey)
	}
	if gotReq.System != "be a trainer" {
		t.Fatalf("system = %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", gotReq.Messages)
	}
}

func TestAnthropicCallerKeyOverridesServer(t *testing.T) {
	var gotKey string
	c := testAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		})
	})

	if _, err := c.rewriteText(context.Background(), TextInput{APIKey: "sk-ant-caller", Prompt: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "sk-ant-caller" {
		t.Fatalf("x-api-key = %q, want caller key", gotKey)
	}
}

func TestAnthropicAPIError(t *testing.T) {
	c := testAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	})

	_, err := c.generatePlan(context.Background(), PlanInput{User: "plan"})
	if !errors.Is(err, ErrProviderRequest) {
		t.Fatalf("err = %v, want ErrProviderRequest", err)
	}
}

func TestAnthropicMalformedPlan(t *testing.T) {
	c := testAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "not json"}},
		})
	})

	_, err := c.generatePlan(context.Background(), PlanInput{User: "plan"})
	if !errors.Is(err, ErrProviderResponse) {
		t.Fatalf("err = %v, want ErrProviderResponse", err)
	}
}
