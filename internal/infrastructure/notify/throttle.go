package notify

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/metrics"
)

// Throttle limits the frames of each countdown so message edits stay under
// the platform rate limit. Final frames and notifications always pass.
type Throttle struct {
	next  ports.Notifier
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle allows perSecond frames per countdown with the given burst. A
// non-positive perSecond disables throttling.
func NewThrottle(next ports.Notifier, perSecond float64, burst int) *Throttle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		next:     next,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (t *Throttle) Notify(ctx context.Context, n domain.Notification) error {
	return t.next.Notify(ctx, n)
}

func (t *Throttle) Display(ctx context.Context, f domain.CountdownFrame) error {
	if !f.Final && !t.limiter(f.RentalID).Allow() {
		metrics.FramesThrottledTotal.Inc()
		return nil
	}
	if f.Final {
		t.Release(f.RentalID)
	}
	return t.next.Display(ctx, f)
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = l
	}
	return l
}

// Release drops the limiter of a countdown whose driver has returned.
func (t *Throttle) Release(key string) {
	t.mu.Lock()
	delete(t.limiters, key)
	t.mu.Unlock()
}
