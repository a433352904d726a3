package ports

import (
	"context"
	"time"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// RentalAction is a button press on a rental notification.
type RentalAction struct {
	RentalID string
	ActorID  string
	// Channel is where the countdown will be displayed. Empty falls back to
	// the channel the booking was made in.
	Channel string
}

// ActionResult is the reply shown to the actor.
type ActionResult struct {
	RentalID string
	Status   string
	Message  string
	// AlreadyFinished is set when an early end found no running countdown.
	AlreadyFinished bool
}

// CountdownView is the operator view of an active countdown.
type CountdownView struct {
	RentalID    string
	RequesterID string
	ProviderID  string
	Channel     string
	StartedAt   time.Time
	EndsAt      time.Time
	Remaining   string
}

// RentalService drives the rental state machine.
type RentalService interface {
	Accept(ctx context.Context, a RentalAction) (*ActionResult, error)
	Decline(ctx context.Context, a RentalAction) (*ActionResult, error)
	EndEarly(ctx context.Context, a RentalAction) (*ActionResult, error)
	Get(ctx context.Context, rentalID string) (*domain.RentalRecord, error)
	Countdowns() []CountdownView
	// Recover rebuilds the countdown set from Accepted records.
	Recover(ctx context.Context) (int, error)
}
