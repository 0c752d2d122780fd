// Package ratelimit implements fixed-window rate limiting on Redis counters.
// When Redis is unavailable the limiter fails open: blocking legitimate
// traffic is worse than briefly exceeding an AI spend budget.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is the subset of redis operations the limiter uses.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed           bool
	Limit             int
	Remaining         int
	RetryAfterSeconds int
}

// Scope is one budget applied to a feature, e.g. "minute" or "hour".
type Scope struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Limiter counts requests per (key, window). The zero value (nil counter) is
// a valid limiter that allows everything.
type Limiter struct {
	counter Counter
}

// New wraps a redis client. A nil client yields a fail-open limiter.
func New(rdb *redis.Client) *Limiter {
	if rdb == nil {
		return &Limiter{}
	}
	return &Limiter{counter: rdb}
}

// NewWithCounter is used by tests to inject a fake counter.
func NewWithCounter(counter Counter) *Limiter {
	return &Limiter{counter: counter}
}

// Check increments the window counter for key and reports whether the call
// is within limit. The counter is incremented even on denial, so hammering a
// denied key keeps the window capped rather than resetting it.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) Result {
	if limit < 1 {
		limit = 1
	}
	open := Result{Allowed: true, Limit: limit, Remaining: limit}

	if l == nil || l.counter == nil {
		return open
	}

	count, err := l.counter.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[ratelimit] incr %s failed, failing open: %v", key, err)
		return open
	}

	// First hit in this window: start the clock. A crash between INCR and
	// EXPIRE can leave a counter without TTL; the overcount is bounded and
	// acceptable for this use.
	if count == 1 {
		if err := l.counter.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("[ratelimit] expire %s failed: %v", key, err)
		}
	}

	allowed := count <= int64(limit)
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	retryAfter := 0
	if !allowed {
		ttl, err := l.counter.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			retryAfter = int(window.Seconds())
		} else {
			retryAfter = int(ttl.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
		}
	}

	return Result{Allowed: allowed, Limit: limit, Remaining: remaining, RetryAfterSeconds: retryAfter}
}

// CheckAll applies every scope for a feature and subject, denying if any
// scope denies. Every scope is incremented regardless of outcome, and the
// reported retry-after is the most restrictive among denials.
func (l *Limiter) CheckAll(ctx context.Context, feature, subject string, scopes []Scope) Result {
	denied := Result{Allowed: true}
	for _, s := range scopes {
		key := fmt.Sprintf("ratelimit:%s:%s:%s", feature, s.Name, subject)
		res := l.Check(ctx, key, s.Limit, s.Window)
		if !res.Allowed && res.RetryAfterSeconds >= denied.RetryAfterSeconds {
			denied = res
			denied.Allowed = false
		}
	}
	if !denied.Allowed {
		return denied
	}
	return Result{Allowed: true}
}
