package ports

import (
	"context"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// RegisterInput is the registration form as typed by the member.
type RegisterInput struct {
	Kind   domain.ProfileKind
	UserID string
	// PersonalInfo is "Name, DD/MM/YYYY, City, yes|no".
	PersonalInfo string
	// Price is the hourly price in thousands, optionally suffixed with K.
	Price           string
	SocialLink      string
	Talents         string
	PlayableContent string
}

// RegisterResult echoes the stored profile with a printable summary.
type RegisterResult struct {
	Profile *domain.Profile
	Summary string
}

// ProfileService validates and stores registrations.
type ProfileService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}
