package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Class is the result of classifying a failed attempt.
type Class int

const (
	// Retryable failures (network errors, timeouts, transient 5xx) are
	// retried while attempts remain.
	Retryable Class = iota
	// Terminal failures (empty provider result, content-policy rejection)
	// stop immediately: retrying would burn quota on a non-transient cause.
	Terminal
)

// Policy controls attempt count, backoff pacing, and failure classification.
// Operations run under a Policy must be individually time-bounded; the
// policy bounds attempts, not the duration of a single attempt.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Classify    func(error) Class
}

// Jitter bounds: each backoff delay is scaled by a uniform factor in
// [0.7, 1.3] so concurrently running jobs don't retry in lockstep.
const (
	jitterMin  = 0.7
	jitterSpan = 0.6
)

// Do executes op under the policy. The delay before attempt k (k >= 2) is
// BaseDelay * 2^(k-2), jittered. Context cancellation aborts the backoff
// sleep and returns ctx.Err().
func Do(ctx context.Context, name string, p Policy, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := backoffDelay(p.BaseDelay, attempt)
			slog.Debug("retrying operation", "op", name, "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.Classify != nil && p.Classify(err) == Terminal {
			slog.Debug("terminal failure, not retrying", "op", name, "attempt", attempt, "error", err)
			return err
		}
		slog.Warn("operation attempt failed", "op", name, "attempt", attempt, "error", err)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}

// backoffDelay returns the jittered exponential delay before the given
// attempt number (attempt >= 2).
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	multiplier := math.Pow(2, float64(attempt-2))
	jitter := jitterMin + rand.Float64()*jitterSpan
	return time.Duration(float64(base) * multiplier * jitter)
}
