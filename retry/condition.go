package retry

import (
	"errors"
)

// RetryCondition retry condition interface
type RetryCondition interface {
	// ShouldRetry determines whether a retry should be performed
	// err: current error
	// attempt: current retry count (starting from 1)
	ShouldRetry(err error, attempt int) bool
}

// ============================================================
// Basic conditions
// ============================================================

// alwaysRetry Always retry
type alwaysRetry struct{}

// AlwaysRetry creates the condition for always retrying
func AlwaysRetry() RetryCondition {
	return &alwaysRetry{}
}

func (c *alwaysRetry) ShouldRetry(err error, attempt int) bool {
	return err != nil
}

// neverRetry never retry
type neverRetry struct{}

// NeverRetry creates conditions for never retrying
func NeverRetry() RetryCondition {
	return &neverRetry{}
}

func (c *neverRetry) ShouldRetry(err error, attempt int) bool {
	return false
}

// ============================================================
// Error matching conditions
// ============================================================

// retryOnError retry on a specific error
type retryOnError struct {
	target error
}

// Create specific error retry conditions (use errors.Is to check)
func RetryOnError(target error) RetryCondition {
	return &retryOnError{target: target}
}

func (c *retryOnError) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, c.target)
}

// retryOnErrors retry on multiple errors
type retryOnErrors struct {
	targets []error
}

// Create multiple error retry conditions
func RetryOnErrors(targets ...error) RetryCondition {
	return &retryOnErrors{targets: targets}
}

func (c *retryOnErrors) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}

	for _, target := range c.targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// ============================================================
// Custom condition
// ============================================================

// retryOnCondition custom condition for retrying
type retryOnCondition struct {
	fn func(error) bool
}

// Create custom condition for retry
func RetryOnCondition(fn func(error) bool) RetryCondition {
	return &retryOnCondition{fn: fn}
}

func (c *retryOnCondition) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	return c.fn(err)
}
