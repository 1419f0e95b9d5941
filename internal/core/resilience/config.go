package resilience

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid execution config")

// Config controls retry and per-attempt timeout behavior. It is loaded once at
// startup and must not change afterwards.
type Config struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// Timeout is the deadline applied to each attempt.
	Timeout time.Duration
}

// Validate checks the config invariants.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be >= 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	if c.Delay < 0 {
		return fmt.Errorf("%w: delay must be >= 0, got %s", ErrInvalidConfig, c.Delay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be > 0, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
