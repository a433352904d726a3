package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// Publisher delivers notifications and countdown frames to the gateway over
// Redis pub/sub.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	return p.publish(ctx, domain.Envelope{Type: domain.EnvelopeNotification, Notification: &n})
}

func (p *Publisher) Display(ctx context.Context, f domain.CountdownFrame) error {
	return p.publish(ctx, domain.Envelope{Type: domain.EnvelopeFrame, Frame: &f})
}

func (p *Publisher) publish(ctx context.Context, e domain.Envelope) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
