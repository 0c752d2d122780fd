package service

import (
	"fmt"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/ratelimit"
)

// RateLimitError carries the limiter outcome so handlers can render the
// Retry-After and X-RateLimit headers. It matches domain.ErrRateLimited
// under errors.Is.
type RateLimitError struct {
	ratelimit.Result
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %ds", e.RetryAfterSeconds)
}

func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}
