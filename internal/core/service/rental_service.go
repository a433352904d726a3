package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/scheduler"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/metrics"
)

const timestampLayout = "02/01/2006 15:04:05"

// Countdowns is the part of the scheduler the rental service drives.
type Countdowns interface {
	Register(c scheduler.Countdown) error
	Stop(pair domain.PairKey) (scheduler.Countdown, bool)
	Active() []scheduler.Countdown
	Now() time.Time
}

// RentalService implements the rental state machine on top of the
// conditional updates of the rental repository.
type RentalService struct {
	repo       ports.RentalRepository
	countdowns Countdowns
	notifier   ports.Notifier
	log        zerolog.Logger
}

// NewRentalService returns a RentalService. Register it with the scheduler
// through OnExpire so natural expiry reaches Expire.
func NewRentalService(
	repo ports.RentalRepository,
	countdowns Countdowns,
	notifier ports.Notifier,
	log zerolog.Logger,
) *RentalService {
	return &RentalService{
		repo:       repo,
		countdowns: countdowns,
		notifier:   notifier,
		log:        log.With().Str("component", "rentals").Logger(),
	}
}

// Accept moves a Pending rental to Accepted and starts its countdown. Only
// the provider may accept.
func (s *RentalService) Accept(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error) {
	rec, err := s.repo.FindByID(ctx, a.RentalID)
	if err != nil {
		return nil, fmt.Errorf("accept rental: %w", err)
	}
	if a.ActorID != rec.ProviderID {
		return nil, fmt.Errorf("accept rental: %w: only the provider can accept this booking", domain.ErrForbidden)
	}

	now := s.countdowns.Now()
	if err := s.apply(ctx, rec.Key(), domain.StatusPending, domain.RentalUpdate{
		Status:      domain.StatusAccepted,
		ActualStart: &now,
	}); err != nil {
		return nil, fmt.Errorf("accept rental: %w", err)
	}

	channel := a.Channel
	if channel == "" {
		channel = rec.Channel
	}
	c := scheduler.Countdown{
		RentalID: rec.ID,
		Key:      rec.Key(),
		Channel:  channel,
		Start:    now,
		End:      now.Add(domain.HoursToDuration(rec.RequestedHours)),
	}
	if err := s.countdowns.Register(c); err != nil {
		// The record is Accepted; a restart rebuilds the countdown from it.
		s.log.Error().Err(err).Str("rental_id", rec.ID).Msg("countdown not registered")
	}

	s.notify(ctx, domain.Notification{
		Kind:     domain.NoticeBookingAccepted,
		Channel:  channel,
		RentalID: rec.ID,
		Message: fmt.Sprintf("%s %s Booking accepted! The rental runs until %s.",
			domain.Mention(rec.RequesterID), domain.Mention(rec.ProviderID), c.End.Format(timestampLayout)),
		Controls: []domain.Control{
			{ID: domain.ControlID(domain.ActionEndEarly, rec.ID), Label: "End Early", Style: "danger"},
		},
	})

	s.log.Info().Str("rental_id", rec.ID).Time("ends_at", c.End).Msg("rental accepted")

	return &ports.ActionResult{
		RentalID: rec.ID,
		Status:   string(domain.StatusAccepted),
		Message:  fmt.Sprintf("Booking accepted! The countdown has started at %s.", now.Format(timestampLayout)),
	}, nil
}

// Decline moves a Pending rental to Declined. Only the provider may decline.
func (s *RentalService) Decline(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error) {
	rec, err := s.repo.FindByID(ctx, a.RentalID)
	if err != nil {
		return nil, fmt.Errorf("decline rental: %w", err)
	}
	if a.ActorID != rec.ProviderID {
		return nil, fmt.Errorf("decline rental: %w: only the provider can decline this booking", domain.ErrForbidden)
	}

	if err := s.apply(ctx, rec.Key(), domain.StatusPending, domain.RentalUpdate{
		Status: domain.StatusDeclined,
	}); err != nil {
		return nil, fmt.Errorf("decline rental: %w", err)
	}

	channel := a.Channel
	if channel == "" {
		channel = rec.Channel
	}
	s.notify(ctx, domain.Notification{
		Kind:     domain.NoticeBookingDeclined,
		Channel:  channel,
		RentalID: rec.ID,
		Message:  fmt.Sprintf("%s Your booking has been declined by the provider.", domain.Mention(rec.RequesterID)),
	})

	s.log.Info().Str("rental_id", rec.ID).Msg("rental declined")

	return &ports.ActionResult{
		RentalID: rec.ID,
		Status:   string(domain.StatusDeclined),
		Message:  "Booking declined.",
	}, nil
}

// EndEarly stops a running countdown and closes the rental as Ended Early.
// Either party may end early. When the countdown is already gone the call is
// a no-op reported through AlreadyFinished.
func (s *RentalService) EndEarly(ctx context.Context, a ports.RentalAction) (*ports.ActionResult, error) {
	rec, err := s.repo.FindByID(ctx, a.RentalID)
	if err != nil {
		return nil, fmt.Errorf("end rental early: %w", err)
	}
	if a.ActorID != rec.ProviderID && a.ActorID != rec.RequesterID {
		return nil, fmt.Errorf("end rental early: %w: only the rental parties can end it", domain.ErrForbidden)
	}
	if rec.Status == domain.StatusPending {
		return nil, fmt.Errorf("end rental early: %w (from %s to %s)",
			domain.ErrInvalidTransition, rec.Status, domain.StatusEndedEarly)
	}

	// A closed record must not stop a later rental of the same pair.
	var (
		c  scheduler.Countdown
		ok bool
	)
	if rec.Status == domain.StatusAccepted {
		c, ok = s.countdowns.Stop(rec.Pair())
	}
	if !ok {
		return &ports.ActionResult{
			RentalID:        rec.ID,
			Status:          string(rec.Status),
			Message:         "Rental has already finished.",
			AlreadyFinished: true,
		}, nil
	}

	hours := s.finish(ctx, c, s.countdowns.Now(), domain.StatusEndedEarly)

	return &ports.ActionResult{
		RentalID: rec.ID,
		Status:   string(domain.StatusEndedEarly),
		Message:  fmt.Sprintf("Rental ended early. Total duration: %.2f hours.", hours),
	}, nil
}

// Expire closes a countdown that ran out as Completed. The scheduler calls it
// once per countdown, after removing it from the active set.
func (s *RentalService) Expire(ctx context.Context, c scheduler.Countdown, at time.Time) {
	s.finish(ctx, c, at, domain.StatusCompleted)
}

// Get returns the stored rental.
func (s *RentalService) Get(ctx context.Context, rentalID string) (*domain.RentalRecord, error) {
	rec, err := s.repo.FindByID(ctx, rentalID)
	if err != nil {
		return nil, fmt.Errorf("get rental: %w", err)
	}
	return rec, nil
}

// Countdowns lists running countdowns for operators.
func (s *RentalService) Countdowns() []ports.CountdownView {
	now := s.countdowns.Now()
	active := s.countdowns.Active()
	out := make([]ports.CountdownView, 0, len(active))
	for _, c := range active {
		out = append(out, ports.CountdownView{
			RentalID:    c.RentalID,
			RequesterID: c.Key.RequesterID,
			ProviderID:  c.Key.ProviderID,
			Channel:     c.Channel,
			StartedAt:   c.Start,
			EndsAt:      c.End,
			Remaining:   domain.FormatClock(c.End.Sub(now)),
		})
	}
	return out
}

// Recover registers a countdown for every Accepted rental in the store.
// Rentals whose end already passed expire on the first tick.
func (s *RentalService) Recover(ctx context.Context) (int, error) {
	recs, err := s.repo.FindAccepted(ctx)
	if err != nil {
		return 0, fmt.Errorf("recover countdowns: %w", err)
	}

	restored := 0
	for _, rec := range recs {
		if rec.ActualStart == nil {
			s.log.Warn().Str("rental_id", rec.ID).Msg("accepted rental without start time skipped")
			continue
		}
		err := s.countdowns.Register(scheduler.Countdown{
			RentalID: rec.ID,
			Key:      rec.Key(),
			Channel:  rec.Channel,
			Start:    *rec.ActualStart,
			End:      rec.ScheduledEnd(),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("rental_id", rec.ID).Msg("countdown not restored")
			continue
		}
		restored++
	}

	s.log.Info().Int("restored", restored).Int("accepted", len(recs)).Msg("countdowns recovered")
	return restored, nil
}

// finish records the actual end of a countdown that this caller removed from
// the scheduler and announces it. It returns the billed hours.
func (s *RentalService) finish(ctx context.Context, c scheduler.Countdown, at time.Time, status domain.RentalStatus) float64 {
	hours := domain.DurationHours(at.Sub(c.Start))
	if hours < 0 {
		hours = 0
	}

	err := s.apply(ctx, c.Key, domain.StatusAccepted, domain.RentalUpdate{
		Status:      status,
		ActualEnd:   &at,
		ActualHours: &hours,
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyProcessed):
		s.log.Warn().Str("rental_id", c.RentalID).Str("status", string(status)).Msg("no accepted rental left to close")
		return hours
	case err != nil:
		s.log.Error().Err(err).Str("rental_id", c.RentalID).Str("status", string(status)).Msg("failed to close rental")
	}

	metrics.ActualRentalHours.Observe(hours)

	kind := domain.NoticeRentalCompleted
	text := "Rental has been completed."
	if status == domain.StatusEndedEarly {
		kind = domain.NoticeRentalEndedEarly
		text = "Rental has ended early."
	}
	s.notify(ctx, domain.Notification{
		Kind:     kind,
		Channel:  c.Channel,
		RentalID: c.RentalID,
		Message: fmt.Sprintf("%s %s %s Total duration: %.2f hours.",
			domain.Mention(c.Key.RequesterID), domain.Mention(c.Key.ProviderID), text, hours),
	})

	s.log.Info().
		Str("rental_id", c.RentalID).
		Str("status", string(status)).
		Float64("hours", hours).
		Msg("rental closed")
	return hours
}

// apply runs one guarded transition. A zero modified count is reported as
// domain.ErrAlreadyProcessed.
func (s *RentalService) apply(ctx context.Context, key domain.RentalKey, from domain.RentalStatus, update domain.RentalUpdate) error {
	match, err := domain.NewTransition(key, from, update)
	if err != nil {
		return err
	}

	n, err := s.repo.Transition(ctx, match, update)
	if err != nil {
		metrics.RentalTransitionsTotal.WithLabelValues(string(update.Status), "error").Inc()
		return err
	}
	if n == 0 {
		metrics.RentalTransitionsTotal.WithLabelValues(string(update.Status), "conflict").Inc()
		return domain.ErrAlreadyProcessed
	}
	metrics.RentalTransitionsTotal.WithLabelValues(string(update.Status), "applied").Inc()
	return nil
}

func (s *RentalService) notify(ctx context.Context, n domain.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.countdowns.Now()
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("kind", string(n.Kind)).Str("channel", n.Channel).Msg("notification not delivered")
	}
}
