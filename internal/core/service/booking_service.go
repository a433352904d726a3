package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/metrics"
)

// BookingOptions carries deployment settings used by intake.
type BookingOptions struct {
	// Location is the zone booking start times are typed in.
	Location *time.Location
	// ProviderRoleID is mentioned by request broadcasts. Empty disables the
	// mention.
	ProviderRoleID string
	CurrencyLabel  string
	Now            func() time.Time
}

type BookingService struct {
	profiles ports.ProfileRepository
	rentals  ports.RentalRepository
	members  ports.MemberDirectory
	notifier ports.Notifier
	opts     BookingOptions
	logger   zerolog.Logger
}

func NewBookingService(
	profiles ports.ProfileRepository,
	rentals ports.RentalRepository,
	members ports.MemberDirectory,
	notifier ports.Notifier,
	opts BookingOptions,
	logger zerolog.Logger,
) *BookingService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CurrencyLabel == "" {
		opts.CurrencyLabel = "VND"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BookingService{
		profiles: profiles,
		rentals:  rentals,
		members:  members,
		notifier: notifier,
		opts:     opts,
		logger:   logger.With().Str("component", "booking").Logger(),
	}
}

// Submit validates a booking form and stores it as a Pending rental. Checks
// run in order: requester identity, provider profile, hours, start time and
// finally the live booking of the pair.
func (s *BookingService) Submit(ctx context.Context, in ports.BookingInput) (*ports.BookingResult, error) {
	res, err := s.submit(ctx, in)
	if err != nil {
		metrics.BookingsRejectedTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}
	metrics.BookingsCreatedTotal.Inc()
	return res, nil
}

func (s *BookingService) submit(ctx context.Context, in ports.BookingInput) (*ports.BookingResult, error) {
	requester, err := ResolveMember(ctx, s.members, in.GuildID, in.Requester)
	if err != nil {
		return nil, fmt.Errorf("resolve requester: %w", err)
	}

	provider, err := s.profiles.FindByName(ctx, domain.KindProvider, strings.TrimSpace(in.ProviderName))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: %q", domain.ErrCounterpartNotFound, in.ProviderName)
		}
		return nil, fmt.Errorf("find provider: %w", err)
	}

	hours, err := ParseHours(in.Hours)
	if err != nil {
		return nil, err
	}
	start, err := ParseStartTime(in.StartTime, s.opts.Location)
	if err != nil {
		return nil, err
	}

	pair := domain.PairKey{RequesterID: requester.ID, ProviderID: provider.UserID}
	live, err := s.rentals.FindLiveByPair(ctx, pair)
	if err != nil && !errors.Is(err, domain.ErrRentalNotFound) {
		return nil, fmt.Errorf("check live rental: %w", err)
	}
	if live != nil {
		return nil, fmt.Errorf("%w (rental %s is %s)", domain.ErrActiveBookingExists, live.ID, live.Status)
	}

	total, err := domain.ComputePrice(hours, provider.PricePerHour)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	rec := &domain.RentalRecord{
		ID:             newRentalID(),
		GuildID:        in.GuildID,
		Channel:        in.Channel,
		RequesterID:    requester.ID,
		ProviderID:     provider.UserID,
		RequestedStart: start,
		RequestedHours: hours,
		TotalPrice:     total,
		Status:         domain.StatusPending,
		Live:           true,
		CreatedAt:      now,
	}
	if err := s.rentals.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create rental: %w", err)
	}

	s.touchRequester(ctx, requester.ID, in.Requester, now)

	price := FormatThousands(rec.TotalPrice) + " " + s.opts.CurrencyLabel
	n := domain.Notification{
		Kind:     domain.NoticeBookingRequested,
		Channel:  in.Channel,
		RentalID: rec.ID,
		Message: fmt.Sprintf(
			"New booking request from %s for %s. Total price: %s. Requested start time: %s. Please accept or decline:",
			domain.Mention(rec.RequesterID), domain.Mention(rec.ProviderID), price,
			start.Format("02/01/2006 15:04"),
		),
		Controls: []domain.Control{
			{ID: domain.ControlID(domain.ActionAccept, rec.ID), Label: "Accept", Style: "success"},
			{ID: domain.ControlID(domain.ActionDecline, rec.ID), Label: "Decline", Style: "danger"},
		},
		CreatedAt: now,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn().Err(err).Str("rental_id", rec.ID).Msg("booking notification not delivered")
	}

	s.logger.Info().
		Str("rental_id", rec.ID).
		Str("pair", pair.String()).
		Float64("hours", hours).
		Int64("total_price", rec.TotalPrice).
		Msg("booking created")

	return &ports.BookingResult{
		RentalID:       rec.ID,
		RequesterID:    rec.RequesterID,
		ProviderID:     rec.ProviderID,
		RequestedStart: rec.RequestedStart,
		RequestedHours: rec.RequestedHours,
		TotalPrice:     rec.TotalPrice,
		Status:         string(rec.Status),
		Message:        "Booking request submitted. Waiting for the provider's confirmation.",
	}, nil
}

// touchRequester records the name a requester booked under without touching
// the rest of a registered profile. A failure does not undo the booking.
func (s *BookingService) touchRequester(ctx context.Context, id, typed string, now time.Time) {
	if err := s.profiles.TouchName(ctx, domain.KindRequester, id, strings.TrimSpace(typed), now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("requester profile not updated")
	}
}

// Broadcast posts a free-text request to the channel and pings the provider
// role.
func (s *BookingService) Broadcast(ctx context.Context, in ports.BroadcastInput) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return fmt.Errorf("%w: request text is empty", domain.ErrInvalidRequest)
	}

	msg := "New booking request:\n" + text
	var roles []string
	if s.opts.ProviderRoleID != "" {
		msg = domain.RoleMention(s.opts.ProviderRoleID) + " " + msg
		roles = []string{s.opts.ProviderRoleID}
	}

	err := s.notifier.Notify(ctx, domain.Notification{
		Kind:         domain.NoticeRequestBroadcast,
		Channel:      in.Channel,
		Message:      msg,
		RoleMentions: roles,
		CreatedAt:    s.opts.Now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("channel", in.Channel).Msg("request broadcast not delivered")
	}
	s.logger.Info().Str("author_id", in.AuthorID).Str("channel", in.Channel).Msg("request broadcast")
	return nil
}

// newRentalID returns a time-ordered rental handle.
func newRentalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
