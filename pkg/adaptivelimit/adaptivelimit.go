// Package adaptivelimit provides a rate limiter that adjusts itself based
// on request outcomes: the allowed rate creeps up while requests succeed and
// is cut down when the remote signals distress. Useful for polling clients
// that must back off without giving up.
package adaptivelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// successGrace is how long after the last error the limiter waits before it
// starts raising the rate again.
const successGrace = 10 * time.Second

// Limiter manages a rate limit that adjusts automatically based on the
// outcome of requests. Safe for concurrent use.
type Limiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// New creates a Limiter.
//
//   - initial: starting requests per second
//   - min, max: allowed rate bounds
//   - stepUp: increment applied on success
//   - stepDown: multiplier applied on failure (e.g. 0.5 to halve)
func New(initial, min, max, stepUp rate.Limit, stepDown float64) *Limiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	burst := int(initial)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter:  rate.NewLimiter(initial, burst),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.limiter.Wait(ctx)
}

// Success raises the rate after a successful request, once enough time has
// passed since the last reported failure.
func (l *Limiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastError) > successGrace {
		l.adjust(l.limiter.Limit() + l.stepUp)
	}
}

// Failure cuts the rate after a failed request.
func (l *Limiter) Failure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastError = time.Now()
	l.adjust(rate.Limit(float64(l.limiter.Limit()) * l.stepDown))
}

// Current returns the current requests per second.
func (l *Limiter) Current() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return float64(l.limiter.Limit())
}

func (l *Limiter) adjust(newLimit rate.Limit) {
	if newLimit > l.maxLimit {
		newLimit = l.maxLimit
	} else if newLimit < l.minLimit {
		newLimit = l.minLimit
	}

	if newLimit != l.limiter.Limit() {
		l.limiter.SetLimit(newLimit)
		burst := int(newLimit)
		if burst < 1 {
			burst = 1
		}
		l.limiter.SetBurst(burst)
	}
}
