package retry

import (
	"time"
)

// Config retry configuration
type Config struct {
	maxAttempts int                          // maximum attempts (default 3)
	backoff     BackoffStrategy              // backoff strategy (default exponential)
	condition   RetryCondition               // retry condition (default retry on any error)
	onRetry     func(attempt int, err error) // retry callback
}

// defaultConfig default configuration
func defaultConfig() *Config {
	return &Config{
		maxAttempts: 3,
		backoff:     ExponentialBackoff(time.Second),
		condition:   AlwaysRetry(),
		onRetry:     nil,
	}
}

// Option configuration option function
type Option func(*Config)

// MaxAttempts sets the maximum number of attempts
func MaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Backoff sets the backoff strategy
func Backoff(b BackoffStrategy) Option {
	return func(c *Config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// Condition sets the retry condition
func Condition(cond RetryCondition) Option {
	return func(c *Config) {
		if cond != nil {
			c.condition = cond
		}
	}
}

// OnRetry sets the retry callback
func OnRetry(f func(attempt int, err error)) Option {
	return func(c *Config) {
		c.onRetry = f
	}
}
