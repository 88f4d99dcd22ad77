package generation

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryingGenerator retries failed generations with exponential backoff and jitter.
// Only unreachable, timeout and 5xx failures are retried.
type RetryingGenerator struct {
	Next       Generator
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// RetryableError optionally replaces the default classifier.
	RetryableError func(err error) bool

	logger *zap.Logger
}

// NewRetryingGenerator wraps next with up to maxRetries additional attempts.
func NewRetryingGenerator(next Generator, maxRetries int, logger *zap.Logger) *RetryingGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingGenerator{
		Next:       next,
		MaxRetries: maxRetries,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		logger:     logger,
	}
}

// Generate calls Next until it succeeds, fails with a non-retryable error or the retry budget
// runs out. The last error is returned.
func (g *RetryingGenerator) Generate(ctx context.Context, req Request) (string, error) {
	classify := g.RetryableError
	if classify == nil {
		classify = IsRetryable
	}
	var lastErr error
	for attempt := 0; attempt <= g.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := g.backoff(attempt)
			g.logger.Debug("retrying generation",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(lastErr))
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return "", lastErr
			case <-t.C:
			}
		}
		text, err := g.Next.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !classify(err) {
			return "", err
		}
	}
	return "", lastErr
}

// IsRetryable reports whether err is a transient backend failure.
func IsRetryable(err error) bool {
	var unreachable *BackendUnreachableError
	var timeout *BackendTimeoutError
	var status *BackendStatusError
	switch {
	case errors.As(err, &unreachable), errors.As(err, &timeout):
		return true
	case errors.As(err, &status):
		return status.Code >= 500
	default:
		return false
	}
}

func (g *RetryingGenerator) backoff(attempt int) time.Duration {
	base := float64(g.BaseDelay)
	if base <= 0 {
		base = float64(500 * time.Millisecond)
	}
	maxD := float64(g.MaxDelay)
	if maxD <= 0 {
		maxD = float64(10 * time.Second)
	}
	delay := base * math.Pow(2, float64(attempt-1))
	// ±25%
	delay += delay * 0.25 * (rand.Float64()*2 - 1)
	if delay > maxD {
		delay = maxD
	}
	return time.Duration(delay)
}
