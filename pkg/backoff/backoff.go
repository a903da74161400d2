package backoff

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 5 * time.Second
)

// Retrier retries an operation with exponential backoff
type Retrier struct {
	Attempts  int
	BaseDelay time.Duration
	logger    *zap.Logger

	// sleep waits for d or until ctx is done (replaced in tests)
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a retrier. Zero values fall back to 3 attempts and a 5s base delay.
func New(attempts int, baseDelay time.Duration, logger *zap.Logger) *Retrier {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Retrier{
		Attempts:  attempts,
		BaseDelay: baseDelay,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Delay returns the wait after the given failed attempt (1-based)
// Examples with 5s base: 1 -> 5s, 2 -> 10s, 3 -> 20s
func (r *Retrier) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return r.BaseDelay * time.Duration(1<<(attempt-1))
}

// Do runs fn until it succeeds or attempts are exhausted
func (r *Retrier) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.Attempts {
			break
		}

		delay := r.Delay(attempt)
		r.logger.Warn(operation+", retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.Attempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	r.logger.Error(operation,
		zap.Int("attempts", r.Attempts),
		zap.Error(lastErr))

	return fmt.Errorf("%s after %d attempts: %w", operation, r.Attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
