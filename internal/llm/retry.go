package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
	"time"
)

const retryBaseDelay = 500 * time.Millisecond

// isTransient reports whether a provider call failed for a network-level
// reason worth retrying. Application errors (auth, bad request, quota) are
// never transient.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection reset", "connection refused", "no such host", "broken pipe", "unexpected eof"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// doWithRetry runs fn up to maxAttempts times with a per-attempt timeout,
// backing off linearly between transient failures. The parent ctx cancels
// both the attempt and the backoff sleep.
func doWithRetry(ctx context.Context, maxAttempts int, timeout time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err = fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt == maxAttempts {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-time.After(retryBaseDelay * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
