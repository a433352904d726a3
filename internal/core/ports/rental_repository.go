package ports

import (
	"context"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// RentalRepository persists rental records keyed by
// (requester_id, provider_id, requested_start).
type RentalRepository interface {
	// Create inserts a Pending record. It fails with domain.ErrDuplicateRental
	// when the composite key exists and domain.ErrActiveBookingExists when the
	// pair already has a live record.
	Create(ctx context.Context, r *domain.RentalRecord) error

	// Transition applies update only if the record matched by m.Key still has
	// status m.Expected. It returns the number of records modified; zero means
	// the transition already happened or the record vanished. Driver failures
	// are wrapped with domain.ErrStore.
	Transition(ctx context.Context, m domain.RentalMatch, update domain.RentalUpdate) (int64, error)

	FindByID(ctx context.Context, rentalID string) (*domain.RentalRecord, error)
	// FindLiveByPair returns the Pending or Accepted record of the pair, if any.
	FindLiveByPair(ctx context.Context, pair domain.PairKey) (*domain.RentalRecord, error)
	// FindAccepted lists every Accepted record, used to rebuild countdowns on start.
	FindAccepted(ctx context.Context) ([]*domain.RentalRecord, error)
}
