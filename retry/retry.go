package retry

import (
	"context"
	"errors"
	"time"
)

// Perform operation, retry on failure
// Return the aggregated error (if all attempts fail)
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	_, err := DoWithData(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	}, opts...)

	return err
}

// DoWithData performs operations and returns data, retries on failure
// Generic support, return business data + error
func DoWithData[T any](ctx context.Context, operation func() (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var result T
	var errs []error

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		// Check if the Context has been cancelled or timed out
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var err error
		result, err = operation()
		if err == nil {
			return result, nil
		}

		errs = append(errs, err)

		// Determine if a retry should be attempted
		if !cfg.condition.ShouldRetry(err, attempt) {
			return result, &MultiError{
				Errors:   errs,
				Attempts: attempt,
			}
		}

		// Final attempt, no more waiting
		if attempt == cfg.maxAttempts {
			return result, &MultiError{
				Errors:   errs,
				Attempts: attempt,
			}
		}

		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}

		backoff := cfg.backoff.Next(attempt)

		// Check if the remaining time is sufficient (if Context Deadline exists)
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining < backoff {
				return result, &MultiError{
					Errors:   append(errs, context.DeadlineExceeded),
					Attempts: attempt,
				}
			}
		}

		// wait for backoff time (can be canceled by Context)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	// Theoretically should not reach here
	return result, &MultiError{
		Errors:   errs,
		Attempts: cfg.maxAttempts,
	}
}

// ============================================================
// helper function
// ============================================================

// GetAttempts Get retry attempts
func GetAttempts(err error) int {
	var multiErr *MultiError
	if errors.As(err, &multiErr) {
		return multiErr.Attempts
	}
	return 0
}

// GetAllErrors Get all errors
func GetAllErrors(err error) []error {
	var multiErr *MultiError
	if errors.As(err, &multiErr) {
		return multiErr.Errors
	}
	return nil
}
