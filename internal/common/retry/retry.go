// Package retry runs startup dials with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Config holds configuration for retry operations with exponential backoff.
type Config struct {
	// MaxAttempts counts the initial attempt
	MaxAttempts int
	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration
	// MaxDelay caps the exponential growth
	MaxDelay time.Duration
	// BackoffFactor multiplies the delay after each retry
	BackoffFactor float64
	// JitterFactor adds up to this fraction of the delay at random
	JitterFactor float64
	// Retryable filters errors; nil retries everything
	Retryable func(error) bool
}

// DefaultConfig tries five times over roughly fifteen seconds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   5,
		InitialDelay:  time.Second,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. onRetry, if set, sees each failure before the wait.
func Do(ctx context.Context, config Config, fn func() error, onRetry func(attempt int, err error, wait time.Duration)) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := config.InitialDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := withJitter(delay, config.JitterFactor)
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		delay = nextDelay(delay, config.BackoffFactor, config.MaxDelay)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func nextDelay(delay time.Duration, factor float64, max time.Duration) time.Duration {
	if factor > 1 {
		delay = time.Duration(float64(delay) * factor)
	}
	if max > 0 && delay > max {
		delay = max
	}
	return delay
}

func withJitter(delay time.Duration, factor float64) time.Duration {
	if factor <= 0 || delay <= 0 {
		return delay
	}
	spread := int64(float64(delay) * factor)
	if spread <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(spread))
}
