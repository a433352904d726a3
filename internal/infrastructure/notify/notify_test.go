package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

type recorder struct {
	mu     sync.Mutex
	notes  []domain.Notification
	frames []domain.CountdownFrame
	err    error
}

func (r *recorder) Notify(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.err
}

func (r *recorder) Display(_ context.Context, f domain.CountdownFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return r.err
}

func TestFanout_TriesEverySink(t *testing.T) {
	failing := &recorder{err: errors.New("redis down")}
	ok := &recorder{}
	f := Fanout{failing, ok}

	err := f.Notify(context.Background(), domain.Notification{Message: "hi"})
	assert.ErrorContains(t, err, "redis down")
	assert.Len(t, failing.notes, 1)
	assert.Len(t, ok.notes, 1)

	assert.Error(t, f.Display(context.Background(), domain.CountdownFrame{}))
	assert.Len(t, ok.frames, 1)
}

func TestThrottle_LimitsFramesPerCountdown(t *testing.T) {
	next := &recorder{}
	th := NewThrottle(next, 0.001, 1)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = th.Display(ctx, domain.CountdownFrame{RentalID: "r1"})
		_ = th.Display(ctx, domain.CountdownFrame{RentalID: "r2"})
	}
	assert.Len(t, next.frames, 2, "one frame per countdown fits the burst")

	_ = th.Display(ctx, domain.CountdownFrame{RentalID: "r1", Final: true})
	assert.Len(t, next.frames, 3, "final frames always pass")

	_ = th.Display(ctx, domain.CountdownFrame{RentalID: "r1"})
	assert.Len(t, next.frames, 4, "a finished countdown's limiter is forgotten")
}

func TestThrottle_DisabledPassesEverything(t *testing.T) {
	next := &recorder{}
	th := NewThrottle(next, 0, 0)
	for i := 0; i < 10; i++ {
		_ = th.Display(context.Background(), domain.CountdownFrame{RentalID: "r1"})
	}
	assert.Len(t, next.frames, 10)
}

func TestThrottle_NotificationsPass(t *testing.T) {
	next := &recorder{}
	th := NewThrottle(next, 0.001, 1)
	for i := 0; i < 3; i++ {
		_ = th.Notify(context.Background(), domain.Notification{})
	}
	assert.Len(t, next.notes, 3)
}

func TestThrottle_ReleaseDropsLimiter(t *testing.T) {
	next := &recorder{}
	th := NewThrottle(next, 0.001, 1)
	ctx := context.Background()

	_ = th.Display(ctx, domain.CountdownFrame{RentalID: "r1"})
	assert.Len(t, th.limiters, 1)

	th.Release("r1")
	assert.Empty(t, th.limiters)

	_ = th.Display(ctx, domain.CountdownFrame{RentalID: "r1"})
	assert.Len(t, next.frames, 2, "a released countdown starts with a fresh burst")
}
