package tutor

import (
	"context"
	"time"

	"mentora/internal/llm"
)

const (
	// defaultMaxAttempts bounds the retry loop (first attempt included).
	defaultMaxAttempts = 4

	// defaultInitialBackoff is the delay before the second attempt.
	defaultInitialBackoff = 1500 * time.Millisecond

	// backoffMultiplier grows the delay between consecutive attempts.
	backoffMultiplier = 1.5
)

// backoffDelay returns the delay before the given retry (retry 1 is the
// delay between the first and second attempt). Strictly increasing.
func backoffDelay(initial time.Duration, retry int) time.Duration {
	delay := float64(initial)
	for i := 1; i < retry; i++ {
		delay *= backoffMultiplier
	}
	return time.Duration(delay)
}

// withRetry runs fn up to maxAttempts times, sleeping with exponential
// backoff between attempts. Only errors classified transient by the
// structured provider contract are retried; everything else propagates
// immediately.
func (o *Orchestrator) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := backoffDelay(o.initialBackoff, attempt-1)
			o.logger.Info("retrying generation request",
				"attempt", attempt,
				"delay", delay,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !llm.IsTransient(err) {
			return err
		}
		lastErr = err
	}

	return lastErr
}
