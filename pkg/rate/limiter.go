package rate

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outbound operations
type Limiter interface {
	// Wait blocks until the next operation is allowed, or ctx is done
	Wait(ctx context.Context) error
}

type localRateLimiter struct {
	limiter *rate.Limiter
}

// NewLocalRateLimiter returns an in memory limiter allowing perSecond
// operations per second, with bursts of up to the same amount. A
// non-positive rate never limits.
func NewLocalRateLimiter(perSecond float64) Limiter {
	if perSecond <= 0 {
		return &NoLimiter{}
	}

	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}

	return &localRateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Wait implements Limiter.Wait
func (l *localRateLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// NoLimiter never limits operations
type NoLimiter struct {
}

// Wait implements Limiter.Wait
func (n *NoLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}
