package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gymbro/gymbro-api/internal/domain"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	anthropicMaxTok  = 4096
)

// anthropicClient calls the Claude Messages API directly over HTTP.
type anthropicClient struct {
	serverKey   string
	model       string
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
}

func newAnthropicClient(opts Options) *anthropicClient {
	model := opts.AnthropicModel
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	return &anthropicClient{
		serverKey:   opts.AnthropicKey,
		model:       model,
		baseURL:     anthropicBaseURL,
		httpClient:  &http.Client{},
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *anthropicClient) generatePlan(ctx context.Context, in PlanInput) (*domain.WeeklyRoutine, error) {
	content, err := c.complete(ctx, in.APIKey, in.System, in.User)
	if err != nil {
		return nil, err
	}
	return decodePlan(content)
}

func (c *anthropicClient) generateDiet(ctx context.Context, in PlanInput) (*domain.WeeklyDiet, error) {
	content, err := c.complete(ctx, in.APIKey, in.System, in.User)
	if err != nil {
		return nil, err
	}
	return decodeDiet(content)
}

func (c *anthropicClient) rewriteText(ctx context.Context, in TextInput) (string, error) {
	content, err := c.complete(ctx, in.APIKey, "", in.Prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *anthropicClient) complete(ctx context.Context, callerKey, system, user string) (string, error) {
	key, err := resolveKey(domain.ProviderAnthropic, callerKey, c.serverKey)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: anthropicMaxTok,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrProviderRequest, err)
	}

	var content string
	err = doWithRetry(ctx, c.maxAttempts, c.timeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProviderRequest, err)
		}
		req.Header.Set("x-api-key", key)
		req.Header.Set("anthropic-version", anthropicVersion)
		req.Header.Set("content-type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Chain both so errors.Is sees the sentinel and the retry
			// classifier sees the underlying network error.
			return fmt.Errorf("%w: %w", ErrProviderRequest, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("%w: read response: %w", ErrProviderRequest, err)
		}

		var decoded anthropicResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("%w: %v", ErrProviderResponse, err)
		}

		if resp.StatusCode != http.StatusOK {
			if decoded.Error != nil {
				return fmt.Errorf("%w: %s: %s", ErrProviderRequest, resp.Status, decoded.Error.Message)
			}
			return fmt.Errorf("%w: %s", ErrProviderRequest, resp.Status)
		}

		var parts []string
		for _, block := range decoded.Content {
			if block.Type == "text" {
				parts = append(parts, block.Text)
			}
		}
		if len(parts) == 0 {
			return fmt.Errorf("%w: no text content in response", ErrProviderResponse)
		}
		content = strings.Join(parts, "")
		return nil
	})
	return content, err
}
