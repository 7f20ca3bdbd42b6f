package installer

import (
	"context"
	"time"
)

// RetryConfig controls automatic retries of failed operations.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultRetryConfig matches the documented policy: three attempts for
// transient failures, starting at two seconds and doubling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 2 * time.Second,
		Multiplier:      2.0,
	}
}

// retry runs action with exponential backoff. Only failures whose
// category is retryable are attempted again; permission failures get one
// extra attempt so the manager can prompt for elevation. onRetry is
// called before each sleep.
func retry(ctx context.Context, cfg RetryConfig, onRetry func(attempt int, err error, wait time.Duration), action func() error) error {
	interval := cfg.InitialInterval
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = action()
		if err == nil {
			return nil
		}

		category := Categorize(err)
		switch {
		case Retryable(category):
			if attempt >= maxAttempts {
				return err
			}
		case category == CategoryPermission:
			if attempt >= 2 {
				return err
			}
		default:
			return err
		}

		if onRetry != nil {
			onRetry(attempt, err, interval)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * cfg.Multiplier)
	}
}
