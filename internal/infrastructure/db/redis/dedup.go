package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = 15 * time.Minute

// InteractionDedup remembers platform interaction ids so a retried button
// press or form submit is handled once.
// Key format: dedup:interaction:<interaction_id>
type InteractionDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInteractionDedup wraps client. A non-positive ttl falls back to 15 minutes.
func NewInteractionDedup(client *redis.Client, ttl time.Duration) *InteractionDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &InteractionDedup{client: client, ttl: ttl}
}

// Claim records id and reports whether this call was the first to see it.
func (d *InteractionDedup) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupKey(id), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release forgets id so the interaction can be retried after a failure.
func (d *InteractionDedup) Release(ctx context.Context, id string) error {
	if err := d.client.Del(ctx, dedupKey(id)).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

func dedupKey(id string) string {
	return "dedup:interaction:" + id
}
