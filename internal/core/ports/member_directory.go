package ports

import (
	"context"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// MemberDirectory exposes the guild member list kept in sync by the gateway.
type MemberDirectory interface {
	Lookup(ctx context.Context, guildID, memberID string) (*domain.Member, error)
	// List returns members in a stable order; identity resolution takes the
	// first match.
	List(ctx context.Context, guildID string) ([]domain.Member, error)
	Replace(ctx context.Context, guildID string, members []domain.Member) error
}
