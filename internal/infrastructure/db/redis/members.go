package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

// MemberDirectory keeps the guild member list pushed by the gateway.
// Keys:
//
//	guild:<id>:members     JSON array in gateway order, read by List
//	guild:<id>:member_ids  hash of member id to JSON member, read by Lookup
type MemberDirectory struct {
	client *redis.Client
}

func NewMemberDirectory(client *redis.Client) *MemberDirectory {
	return &MemberDirectory{client: client}
}

func (d *MemberDirectory) Lookup(ctx context.Context, guildID, memberID string) (*domain.Member, error) {
	raw, err := d.client.HGet(ctx, idsKey(guildID), memberID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: <@%s>", domain.ErrIdentifierNotFound, memberID)
		}
		return nil, fmt.Errorf("member lookup: %w: %v", domain.ErrStore, err)
	}

	var m domain.Member
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode member: %w: %v", domain.ErrStore, err)
	}
	return &m, nil
}

// List returns the members in the order they were pushed. An unknown guild
// has no members.
func (d *MemberDirectory) List(ctx context.Context, guildID string) ([]domain.Member, error) {
	raw, err := d.client.Get(ctx, listKey(guildID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("member list: %w: %v", domain.ErrStore, err)
	}

	var members []domain.Member
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("decode members: %w: %v", domain.ErrStore, err)
	}
	return members, nil
}

// Replace swaps the whole member list of the guild atomically.
func (d *MemberDirectory) Replace(ctx context.Context, guildID string, members []domain.Member) error {
	list, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}

	byID := make(map[string]any, len(members))
	for _, m := range members {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode member: %w", err)
		}
		byID[m.ID] = b
	}

	_, err = d.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, listKey(guildID), idsKey(guildID))
		p.Set(ctx, listKey(guildID), list, 0)
		if len(byID) > 0 {
			p.HSet(ctx, idsKey(guildID), byID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace members: %w: %v", domain.ErrStore, err)
	}
	return nil
}

func listKey(guildID string) string { return "guild:" + guildID + ":members" }
func idsKey(guildID string) string  { return "guild:" + guildID + ":member_ids" }
