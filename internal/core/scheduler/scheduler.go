// Package scheduler tracks running rental countdowns.
//
// Every registered countdown gets its own goroutine that refreshes the
// visible display once per tick until the end time passes or the countdown
// is stopped. A coarser sweep expires anything whose end time has passed in
// case a session driver lagged or never ran. The active set is guarded by a
// single mutex; removing a key from it is the only way to win the right to
// finalize that countdown, so expiry and early termination cannot both fire.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/metrics"
)

const (
	defaultTick  = time.Second
	defaultSweep = time.Minute

	remainingPrefix = "Rental time remaining: "
	endedText       = "Rental time has ended!"
)

// Clock abstracts wall time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Countdown is an active rental countdown. It is never persisted.
type Countdown struct {
	RentalID string
	Key      domain.RentalKey
	Channel  string
	Start    time.Time
	End      time.Time
}

// Pair returns the key the countdown is registered under.
func (c Countdown) Pair() domain.PairKey {
	return c.Key.Pair()
}

// Expirer finalizes a countdown whose time ran out. It is called at most once
// per registration, after the countdown has left the active set.
type Expirer interface {
	Expire(ctx context.Context, c Countdown, at time.Time)
}

// Display receives the per-tick countdown frames.
type Display interface {
	Display(ctx context.Context, f domain.CountdownFrame) error
}

// Releaser is implemented by displays that keep per-countdown state. Release
// is called once the driver of rentalID has returned, however it ended.
type Releaser interface {
	Release(rentalID string)
}

// Options tunes the scheduler. Zero values fall back to one-second ticks and
// a one-minute sweep on the system clock.
type Options struct {
	Tick  time.Duration
	Sweep time.Duration
	Clock Clock
}

type entry struct {
	Countdown
	stop chan struct{}
}

// Scheduler owns the set of active countdowns.
type Scheduler struct {
	mu      sync.Mutex
	active  map[domain.PairKey]*entry
	expirer Expirer

	display Display
	clock   Clock
	tick    time.Duration
	sweep   time.Duration
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. Call OnExpire before registering countdowns.
func New(display Display, log zerolog.Logger, opts Options) *Scheduler {
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	if opts.Sweep <= 0 {
		opts.Sweep = defaultSweep
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		active:  make(map[domain.PairKey]*entry),
		display: display,
		clock:   opts.Clock,
		tick:    opts.Tick,
		sweep:   opts.Sweep,
		log:     log.With().Str("component", "scheduler").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnExpire sets the callback that finalizes expired countdowns.
func (s *Scheduler) OnExpire(e Expirer) {
	s.mu.Lock()
	s.expirer = e
	s.mu.Unlock()
}

// Register adds c to the active set and starts its display driver.
func (s *Scheduler) Register(c Countdown) error {
	pair := c.Pair()

	s.mu.Lock()
	if _, exists := s.active[pair]; exists {
		s.mu.Unlock()
		return domain.ErrCountdownExists
	}
	e := &entry{Countdown: c, stop: make(chan struct{})}
	s.active[pair] = e
	s.wg.Add(1)
	n := len(s.active)
	s.mu.Unlock()

	metrics.ActiveCountdowns.Set(float64(n))
	s.log.Info().
		Str("rental_id", c.RentalID).
		Str("pair", pair.String()).
		Time("ends_at", c.End).
		Msg("countdown registered")

	go s.drive(e)
	return nil
}

// Stop removes the countdown of pair, if any, and reports whether this call
// removed it. The caller owns finalization of a removed countdown.
func (s *Scheduler) Stop(pair domain.PairKey) (Countdown, bool) {
	s.mu.Lock()
	e, ok := s.active[pair]
	s.mu.Unlock()
	if !ok {
		return Countdown{}, false
	}
	return s.take(e)
}

// Sweep expires every countdown whose end time is not after now and returns
// how many it expired.
func (s *Scheduler) Sweep(now time.Time) int {
	s.mu.Lock()
	due := make([]*entry, 0)
	for _, e := range s.active {
		if !now.Before(e.End) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	expired := 0
	for _, e := range due {
		if c, ok := s.take(e); ok {
			s.expire(c)
			expired++
		}
	}
	return expired
}

// Run drives the periodic sweep until ctx is cancelled or Close is called.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.clock.Now()); n > 0 {
				s.log.Info().Int("expired", n).Msg("sweep expired countdowns")
			}
		}
	}
}

// Active returns a snapshot of the running countdowns ordered by end time.
func (s *Scheduler) Active() []Countdown {
	s.mu.Lock()
	out := make([]Countdown, 0, len(s.active))
	for _, e := range s.active {
		out = append(out, e.Countdown)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].End.Before(out[j].End) })
	return out
}

// Now exposes the scheduler clock so callers stamp times consistently.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Close stops every driver and waits for them to return. Countdowns left in
// the active set are not finalized; their records stay Accepted and are
// rebuilt on the next start.
func (s *Scheduler) Close() {
	s.cancel()
	s.wg.Wait()
}

// take removes e from the active set if it is still the registered entry for
// its pair. Only the caller that gets true may finalize the countdown.
func (s *Scheduler) take(e *entry) (Countdown, bool) {
	pair := e.Pair()

	s.mu.Lock()
	current, ok := s.active[pair]
	if !ok || current != e {
		s.mu.Unlock()
		return Countdown{}, false
	}
	delete(s.active, pair)
	close(e.stop)
	n := len(s.active)
	s.mu.Unlock()

	metrics.ActiveCountdowns.Set(float64(n))
	return e.Countdown, true
}

func (s *Scheduler) expire(c Countdown) {
	s.mu.Lock()
	exp := s.expirer
	s.mu.Unlock()

	if exp == nil {
		s.log.Error().Str("rental_id", c.RentalID).Msg("countdown expired with no expirer set")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("rental_id", c.RentalID).Msg("expiry handler panicked")
		}
	}()
	exp.Expire(s.ctx, c, c.End)
}

func (s *Scheduler) drive(e *entry) {
	defer s.wg.Done()
	if r, ok := s.display.(Releaser); ok {
		defer r.Release(e.RentalID)
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("rental_id", e.RentalID).Msg("countdown driver panicked")
		}
	}()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		now := s.clock.Now()
		if !now.Before(e.End) {
			if c, ok := s.take(e); ok {
				s.expire(c)
			}
			s.show(e, 0, true)
			return
		}

		s.show(e, e.End.Sub(now), false)

		select {
		case <-s.ctx.Done():
			return
		case <-e.stop:
			s.show(e, 0, true)
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) show(e *entry, remaining time.Duration, final bool) {
	if s.display == nil {
		return
	}
	if remaining < 0 {
		remaining = 0
	}
	text := remainingPrefix + domain.FormatClock(remaining)
	if final {
		text = endedText
	}
	err := s.display.Display(s.ctx, domain.CountdownFrame{
		RentalID:  e.RentalID,
		Channel:   e.Channel,
		Remaining: remaining,
		Text:      text,
		Final:     final,
		At:        s.clock.Now(),
	})
	if err != nil {
		s.log.Debug().Err(err).Str("rental_id", e.RentalID).Msg("countdown frame not delivered")
	}
}
