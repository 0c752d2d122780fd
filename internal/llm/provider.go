// Package llm dispatches plan generation to a closed set of AI providers.
// Providers are selected by explicit mapping on the request's provider
// string; each implementation returns a schema-validated structured plan.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gymbro/gymbro-api/internal/domain"
)

var (
	// ErrProviderUnavailable indicates the requested provider is not supported.
	ErrProviderUnavailable = errors.New("provider not supported")
	// ErrProviderRequest indicates an error during the provider API request.
	ErrProviderRequest = errors.New("provider request failed")
	// ErrProviderResponse indicates the provider returned malformed output.
	ErrProviderResponse = errors.New("failed to parse provider response")
)

// PlanInput is a provider-agnostic structured generation request.
type PlanInput struct {
	Provider domain.Provider
	// Caller-supplied key; takes precedence over the server-configured key
	APIKey string
	System string
	User   string
}

// TextInput is a provider-agnostic plain-text generation request.
type TextInput struct {
	Provider domain.Provider
	APIKey   string
	Prompt   string
}

// Generator is the capability the planning services depend on.
type Generator interface {
	// GeneratePlan invokes the provider requesting a schema-validated plan.
	GeneratePlan(ctx context.Context, in PlanInput) (*domain.WeeklyRoutine, error)
	// GenerateDiet invokes the provider requesting a schema-validated meal plan.
	GenerateDiet(ctx context.Context, in PlanInput) (*domain.WeeklyDiet, error)
	// RewriteText invokes the provider for a short free-text rewrite.
	RewriteText(ctx context.Context, in TextInput) (string, error)
}

// Options configures the provider registry.
type Options struct {
	OpenAIKey           string
	OpenAIModel         string
	OpenAIFallbackModel string

	AnthropicKey   string
	AnthropicModel string

	// Per-attempt timeout for provider calls
	Timeout time.Duration
	// Total attempts for transient network failures (minimum 1)
	MaxAttempts int
}

// Registry implements Generator over the supported providers.
type Registry struct {
	openai    *openAIClient
	anthropic *anthropicClient
}

// NewRegistry builds the provider registry from server configuration.
func NewRegistry(opts Options) *Registry {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	return &Registry{
		openai:    newOpenAIClient(opts),
		anthropic: newAnthropicClient(opts),
	}
}

func (r *Registry) GeneratePlan(ctx context.Context, in PlanInput) (*domain.WeeklyRoutine, error) {
	switch in.Provider {
	case domain.ProviderOpenAI:
		return r.openai.generatePlan(ctx, in)
	case domain.ProviderAnthropic:
		return r.anthropic.generatePlan(ctx, in)
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderUnavailable, in.Provider)
	}
}

func (r *Registry) GenerateDiet(ctx context.Context, in PlanInput) (*domain.WeeklyDiet, error) {
	switch in.Provider {
	case domain.ProviderOpenAI:
		return r.openai.generateDiet(ctx, in)
	case domain.ProviderAnthropic:
		return r.anthropic.generateDiet(ctx, in)
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderUnavailable, in.Provider)
	}
}

func (r *Registry) RewriteText(ctx context.Context, in TextInput) (string, error) {
	switch in.Provider {
	case domain.ProviderOpenAI:
		return r.openai.rewriteText(ctx, in)
	case domain.ProviderAnthropic:
		return r.anthropic.rewriteText(ctx, in)
	default:
		return "", fmt.Errorf("%w: %q", ErrProviderUnavailable, in.Provider)
	}
}

// resolveKey picks the caller key over the server key and normalizes it.
// Keys pasted from password managers routinely carry zero-width characters
// that later break HTTP header encoding.
func resolveKey(provider domain.Provider, callerKey, serverKey string) (string, error) {
	key := sanitizeAPIKey(callerKey)
	if key == "" {
		key = sanitizeAPIKey(serverKey)
	}
	if key == "" {
		return "", fmt.Errorf("%w: no %s API key provided and none configured on the server", domain.ErrCredentialRequired, provider)
	}
	for _, c := range key {
		if c < 0x20 || c > 0x7e {
			return "", fmt.Errorf("%w: %s API key contains invalid characters", domain.ErrCredentialRequired, provider)
		}
	}
	return key, nil
}

func sanitizeAPIKey(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// decodePlan parses a strict-JSON plan payload, tolerating accidental
// markdown fences, and validates the minimum structure.
func decodePlan(content string) (*domain.WeeklyRoutine, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var plan domain.WeeklyRoutine
	if err := json.Unmarshal([]byte(trimmed), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderResponse, err)
	}

	if len(plan.Days) == 0 {
		return nil, fmt.Errorf("%w: plan has no days", ErrProviderResponse)
	}
	for _, day := range plan.Days {
		if day.Day == "" {
			return nil, fmt.Errorf("%w: day missing label", ErrProviderResponse)
		}
		for _, ex := range day.Exercises {
			if ex.Name == "" || ex.SetsReps == "" {
				return nil, fmt.Errorf("%w: exercise missing name or prescription", ErrProviderResponse)
			}
		}
	}

	return &plan, nil
}

// decodeDiet parses a strict-JSON meal plan payload with the same fence
// tolerance as decodePlan.
func decodeDiet(content string) (*domain.WeeklyDiet, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var diet domain.WeeklyDiet
	if err := json.Unmarshal([]byte(trimmed), &diet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderResponse, err)
	}

	if len(diet.Days) == 0 {
		return nil, fmt.Errorf("%w: diet has no days", ErrProviderResponse)
	}
	for _, day := range diet.Days {
		if day.Day == "" {
			return nil, fmt.Errorf("%w: diet day missing label", ErrProviderResponse)
		}
		if len(day.Meals) == 0 {
			return nil, fmt.Errorf("%w: diet day %q has no meals", ErrProviderResponse, day.Day)
		}
		for _, meal := range day.Meals {
			if meal.Name == "" {
				return nil, fmt.Errorf("%w: meal missing name", ErrProviderResponse)
			}
		}
	}

	return &diet, nil
}
