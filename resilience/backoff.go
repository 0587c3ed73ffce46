package resilience

import (
	"sync"
	"time"
)

// Backoff yields growing delays for a reconnect loop. The first delay after
// Reset equals the base; each further call multiplies by the factor up to
// the cap. It is safe for concurrent use.
type Backoff struct {
	mu      sync.Mutex
	cfg     RetryConfig
	attempt int
}

// NewBackoff creates a Backoff from base delay, cap and growth factor.
// Jitter is taken from the config as is.
func NewBackoff(cfg RetryConfig) *Backoff {
	cfg.normalize()
	return &Backoff{cfg: cfg}
}

// Next returns the delay before the next attempt and advances the sequence.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempt++
	return calculateBackoff(b.attempt, b.cfg)
}

// Reset restarts the sequence at the base delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempt = 0
}

// SetBase changes the base delay, keeping the position in the sequence.
// Non-positive values are ignored.
func (b *Backoff) SetBase(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.InitialBackoff = d
	if b.cfg.MaxBackoff < d {
		b.cfg.MaxBackoff = d
	}
}

// Base returns the current base delay.
func (b *Backoff) Base() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.InitialBackoff
}
