package ports

import (
	"context"
	"time"
)

// BookingInput is the raw booking form as submitted on the platform.
type BookingInput struct {
	GuildID string
	Channel string
	// Requester is a mention, exact username or exact display name.
	Requester    string
	ProviderName string
	Hours        string
	StartTime    string
}

// BookingResult describes the Pending rental created by an intake.
type BookingResult struct {
	RentalID       string
	RequesterID    string
	ProviderID     string
	RequestedStart time.Time
	RequestedHours float64
	TotalPrice     int64
	Status         string
	Message        string
}

// BroadcastInput is a free-text request posted to the provider role.
type BroadcastInput struct {
	Channel  string
	AuthorID string
	Text     string
}

// BookingService validates booking forms and opens Pending rentals.
type BookingService interface {
	Submit(ctx context.Context, in BookingInput) (*BookingResult, error)
	Broadcast(ctx context.Context, in BroadcastInput) error
}
