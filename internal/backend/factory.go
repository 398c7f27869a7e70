package backend

import (
	"fmt"

	"github.com/abhisek/coursely/internal/store"
)

// New creates a Client from configuration.
// It returns the HTTP client wrapped with retry and logging middleware.
func New(cfg Config, eventRepo store.EventRepo) (Client, error) {
	base, err := NewHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing backend client: %w", err)
	}

	var c Client = base
	if eventRepo != nil {
		c = WithLogging(c, eventRepo)
	}

	// Wrap with middleware: caller → retry → logging → base
	return WithRetry(c, cfg.Retry), nil
}
