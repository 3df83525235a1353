package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceStore tracks online identities with TTL keys so a crashed
// gateway's entries age out on their own.
// Key format: user:<identity_id>:online
type PresenceStore struct {
	client *redis.Client
}

// NewPresenceStore creates a PresenceStore wrapping the given Redis client.
func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

func (p *PresenceStore) SetOnline(ctx context.Context, identityID string, ttl time.Duration) error {
	return p.client.Set(ctx, p.key(identityID), "1", ttl).Err()
}

func (p *PresenceStore) SetOffline(ctx context.Context, identityID string) error {
	return p.client.Del(ctx, p.key(identityID)).Err()
}

// Heartbeat refreshes the TTL so an active connection stays visible.
func (p *PresenceStore) Heartbeat(ctx context.Context, identityID string, ttl time.Duration) error {
	return p.client.Expire(ctx, p.key(identityID), ttl).Err()
}

func (p *PresenceStore) IsOnline(ctx context.Context, identityID string) (bool, error) {
	n, err := p.client.Exists(ctx, p.key(identityID)).Result()
	if err != nil {
		return false, fmt.Errorf("presence check: %w", err)
	}
	return n > 0, nil
}

func (p *PresenceStore) key(identityID string) string {
	return fmt.Sprintf("user:%s:online", identityID)
}
