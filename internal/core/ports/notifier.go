package ports

import (
	"context"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// Notifier is the boundary to the chat platform. Delivery is fire-and-forget:
// callers log failures and never retry.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
	Display(ctx context.Context, f domain.CountdownFrame) error
}
