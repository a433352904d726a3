package ports

import (
	"context"
	"time"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// ProfileRepository persists provider and requester profiles. Each kind lives
// in its own collection with a unique user id.
type ProfileRepository interface {
	// Upsert replaces the profile identified by (p.Kind, p.UserID).
	Upsert(ctx context.Context, p *domain.Profile) error
	// TouchName sets only the display name of (kind, userID), creating a bare
	// profile when none exists. Other fields are left as stored.
	TouchName(ctx context.Context, kind domain.ProfileKind, userID, name string, at time.Time) error
	// FindByName returns the first profile of kind whose display name matches
	// name exactly (case-insensitive).
	FindByName(ctx context.Context, kind domain.ProfileKind, name string) (*domain.Profile, error)
	FindByID(ctx context.Context, kind domain.ProfileKind, userID string) (*domain.Profile, error)
}
