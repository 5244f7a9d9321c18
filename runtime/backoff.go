package runtime

import "time"

const (
	DefaultBaseDelay  = 1000 * time.Millisecond
	DefaultMaxDelay   = 15000 * time.Millisecond
	DefaultMaxAttempt = 10
)

// Backoff computes reconnect delays as min(max, base * 2^attempt).
// attempt grows by one per scheduled reconnect and never exceeds maxAttempt.
// It is owned by the session loop and not safe for concurrent use.
type Backoff struct {
	base       time.Duration
	max        time.Duration
	maxAttempt int
	attempt    int
}

func NewBackoff(base, limit time.Duration, maxAttempt int) *Backoff {
	if base <= 0 {
		base = DefaultBaseDelay
	}
	switch {
	case limit <= 0:
		limit = max(DefaultMaxDelay, base)
	case limit < base:
		limit = base
	}
	if maxAttempt <= 0 {
		maxAttempt = DefaultMaxAttempt
	}
	return &Backoff{base: base, max: limit, maxAttempt: maxAttempt}
}

// Next returns the delay for the current attempt, then advances attempt.
func (b *Backoff) Next() time.Duration {
	delay := b.max
	// Past 2^30 the shift overflows; the cap is long reached by then.
	if b.attempt < 30 {
		delay = min(b.max, b.base*time.Duration(1<<b.attempt))
	}
	b.attempt = min(b.attempt+1, b.maxAttempt)
	return delay
}

func (b *Backoff) Reset() {
	b.attempt = 0
}

func (b *Backoff) Attempt() int {
	return b.attempt
}
