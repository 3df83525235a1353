package ports

import (
	"context"
	"time"

	"github.com/campuscare/campuscare/internal/core/domain"
)

// EventBus is the publish side of the bus. Publish is fire-and-forget: it
// returns once the bus has accepted the message, not once it is delivered.
// Publish failures are the caller's to log and swallow; they must never
// roll back the state mutation that produced the event.
type EventBus interface {
	Publish(ctx context.Context, channel string, event *domain.Event) error
}

// EventHandler is invoked for every message on a subscribed channel,
// at least once, in per-channel publish order.
type EventHandler func(channel string, event *domain.Event)

// EventSubscriber is the consume side of the bus. Channels containing a
// '*' are pattern subscriptions. Subscribe blocks until ctx is cancelled;
// a subscriber that is down when a message is published misses it.
type EventSubscriber interface {
	Subscribe(ctx context.Context, handler EventHandler, channels ...string) error
}

// Presence tracks which identities currently hold an open socket
// connection, with a TTL so crashed gateways age out their entries.
type Presence interface {
	SetOnline(ctx context.Context, identityID string, ttl time.Duration) error
	SetOffline(ctx context.Context, identityID string) error
	Heartbeat(ctx context.Context, identityID string, ttl time.Duration) error
	IsOnline(ctx context.Context, identityID string) (bool, error)
}
