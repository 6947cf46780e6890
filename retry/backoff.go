package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy backoff strategy interface
type BackoffStrategy interface {
	// Next returns the delay before the N-th retry (attempt starts at 1)
	Next(attempt int) time.Duration
}

// BackoffOption backoff strategy option
type BackoffOption func(*backoffConfig)

// backoffConfig backoff strategy configuration
type backoffConfig struct {
	multiplier float64       // exponential multiplier (default 2.0)
	maxDelay   time.Duration // maximum delay (default 30s)
	jitter     float64       // jitter ratio (default 0.2, i.e. 20%)
}

func defaultBackoffConfig() *backoffConfig {
	return &backoffConfig{
		multiplier: 2.0,
		maxDelay:   30 * time.Second,
		jitter:     0.2,
	}
}

// WithMultiplier sets the exponential multiplier
func WithMultiplier(m float64) BackoffOption {
	return func(c *backoffConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// WithMaxDelay sets the maximum delay
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(c *backoffConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithJitter sets the jitter ratio (0.0 - 1.0)
func WithJitter(ratio float64) BackoffOption {
	return func(c *backoffConfig) {
		if ratio >= 0 && ratio <= 1.0 {
			c.jitter = ratio
		}
	}
}

// ============================================================
// Exponential backoff
// ============================================================

type exponentialBackoff struct {
	base   time.Duration
	config *backoffConfig
}

// ExponentialBackoff creates an exponential backoff strategy
// delay = base * (multiplier ^ (attempt - 1))
func ExponentialBackoff(base time.Duration, opts ...BackoffOption) BackoffStrategy {
	config := defaultBackoffConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &exponentialBackoff{
		base:   base,
		config: config,
	}
}

func (b *exponentialBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(b.base) * math.Pow(b.config.multiplier, float64(attempt-1))

	if delay > float64(b.config.maxDelay) {
		delay = float64(b.config.maxDelay)
	}

	if b.config.jitter > 0 {
		delay = applyJitter(delay, b.config.jitter)
	}

	return time.Duration(delay)
}

// ============================================================
// Constant backoff
// ============================================================

type constantBackoff struct {
	delay  time.Duration
	config *backoffConfig
}

// ConstantBackoff creates a fixed-delay backoff strategy
func ConstantBackoff(delay time.Duration, opts ...BackoffOption) BackoffStrategy {
	config := defaultBackoffConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &constantBackoff{
		delay:  delay,
		config: config,
	}
}

func (b *constantBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(b.delay)

	if b.config.jitter > 0 {
		delay = applyJitter(delay, b.config.jitter)
	}

	return time.Duration(delay)
}

// ============================================================
// No backoff
// ============================================================

type noBackoff struct{}

// NoBackoff creates a strategy with no delay (retry immediately)
func NoBackoff() BackoffStrategy {
	return &noBackoff{}
}

func (b *noBackoff) Next(attempt int) time.Duration {
	return 0
}

// ============================================================
// helpers
// ============================================================

// applyJitter randomizes within [delay * (1 - jitter), delay * (1 + jitter)]
func applyJitter(delay float64, jitter float64) float64 {
	delta := delay * jitter
	offset := (rand.Float64()*2 - 1) * delta

	result := delay + offset
	if result < 0 {
		return 0
	}

	return result
}
