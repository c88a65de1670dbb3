package portal

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces the start of consecutive fetches at least interval apart
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a Pacer. A zero interval never waits.
func NewPacer(interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next fetch may start
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
