package backend

import "time"

// Config holds backend client configuration.
type Config struct {
	// BaseURL is the single action-dispatched endpoint.
	BaseURL string

	// UserAgent is sent with every request when set.
	UserAgent string

	Retry RetryConfig

	// Timeout bounds a single HTTP round trip. Default: 30s.
	Timeout time.Duration
}

// RetryConfig controls the retry decorator.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: "coursely",
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}
