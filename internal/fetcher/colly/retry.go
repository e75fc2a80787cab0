package collyfetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// LinearRetryPolicy retries transient failures with a linearly growing
// delay (base × attempt index). The policy is a standalone object so it
// can be exercised without any network I/O.
type LinearRetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
}

// NewLinearRetryPolicy builds the default policy: 3 attempts, 600ms base.
func NewLinearRetryPolicy() *LinearRetryPolicy {
	return &LinearRetryPolicy{maxAttempts: 3, baseDelay: 600 * time.Millisecond}
}

// NewLinearRetryPolicyWith builds a policy with explicit knobs (tests).
func NewLinearRetryPolicyWith(maxAttempts int, baseDelay time.Duration) *LinearRetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &LinearRetryPolicy{maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// ShouldRetry reports whether another attempt is warranted. Only rate
// limiting (429), server errors (5xx) and timeouts are transient; 4xx
// responses and context cancellation are not.
func (p *LinearRetryPolicy) ShouldRetry(statusCode int, err error, attempt int) bool {
	if attempt >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if statusCode == http.StatusTooManyRequests || statusCode >= 500 {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// Backoff returns the wait before the given attempt retries.
func (p *LinearRetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.baseDelay * time.Duration(attempt)
}
