package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/gymbro/gymbro-api/internal/domain"
)

// openAIClient calls the OpenAI chat completions API. A fresh SDK client is
// built per call because the API key may come from the request rather than
// server config.
type openAIClient struct {
	serverKey     string
	model         string
	fallbackModel string
	timeout       time.Duration
	maxAttempts   int
}

func newOpenAIClient(opts Options) *openAIClient {
	model := opts.OpenAIModel
	if model == "" {
		model = "gpt-4o"
	}
	fallback := opts.OpenAIFallbackModel
	if fallback == "" {
		fallback = "gpt-4o-mini"
	}

	return &openAIClient{
		serverKey:     opts.OpenAIKey,
		model:         model,
		fallbackModel: fallback,
		timeout:       opts.Timeout,
		maxAttempts:   opts.MaxAttempts,
	}
}

func (c *openAIClient) generatePlan(ctx context.Context, in PlanInput) (*domain.WeeklyRoutine, error) {
	content, err := c.complete(ctx, in.APIKey, in.System, in.User)
	if err != nil {
		return nil, err
	}
	return decodePlan(content)
}

func (c *openAIClient) generateDiet(ctx context.Context, in PlanInput) (*domain.WeeklyDiet, error) {
	content, err := c.complete(ctx, in.APIKey, in.System, in.User)
	if err != nil {
		return nil, err
	}
	return decodeDiet(content)
}

func (c *openAIClient) rewriteText(ctx context.Context, in TextInput) (string, error) {
	content, err := c.complete(ctx, in.APIKey, "", in.Prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *openAIClient) complete(ctx context.Context, callerKey, system, user string) (string, error) {
	key, err := resolveKey(domain.ProviderOpenAI, callerKey, c.serverKey)
	if err != nil {
		return "", err
	}

	content, err := c.completeWithModel(ctx, key, c.model, system, user)
	if err != nil && isModelNotFound(err) && c.fallbackModel != c.model {
		log.Printf("[llm] openai model %s unavailable, retrying with %s", c.model, c.fallbackModel)
		return c.completeWithModel(ctx, key, c.fallbackModel, system, user)
	}
	return content, err
}

func (c *openAIClient) completeWithModel(ctx context.Context, key, model, system, user string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(key))

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	var content string
	err := doWithRetry(ctx, c.maxAttempts, c.timeout, func(ctx context.Context) error {
		resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    model,
			Messages: messages,
		})
		if err != nil {
			// Chain both so errors.Is sees the sentinel and the retry
			// classifier sees the underlying network error.
			return fmt.Errorf("%w: %w", ErrProviderRequest, err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: no choices in response", ErrProviderResponse)
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	return content, err
}

// isModelNotFound matches the 404 the API returns for models the key has no
// access to, so the request can be replayed against the fallback model.
func isModelNotFound(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 404 {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "model") &&
		(strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "do not have access"))
}
