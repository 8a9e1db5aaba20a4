package api

import (
	"context"
	"time"

	"storefront/apperr"
)

// RetryConfig bounds Retry. Zero values fall back to 3 attempts, 1s apart.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Delay < 0 {
		c.Delay = 0
	} else if c.Delay == 0 {
		c.Delay = time.Second
	}
	return c
}

// Retry calls fn until it succeeds, fails with anything other than a
// connectivity error, or runs out of attempts. The delay between attempts
// is fixed. HTTP error responses are never retried.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var (
		out T
		err error
	)
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		out, err = fn(ctx)
		if err == nil {
			return out, nil
		}
		if attempt == cfg.MaxAttempts || !apperr.IsNetworkError(err) {
			break
		}

		t := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return out, err
		case <-t.C:
		}
	}
	return out, err
}
