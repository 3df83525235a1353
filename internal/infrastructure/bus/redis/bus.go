package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

// Bus implements the event bus on Redis pub/sub. Publish is fire-and-forget
// and messages are not durable: a subscriber that is down when a message is
// published misses it. Within one channel, go-redis delivers messages to a
// subscriber in publish order.
type Bus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewBus(client *redis.Client, log zerolog.Logger) *Bus {
	return &Bus{client: client, log: log}
}

// Publish marshals the event and hands it to Redis. It returns once the
// broker has accepted the message, not once any subscriber has seen it.
func (b *Bus) Publish(ctx context.Context, channel string, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("bus publish: marshal: %w", err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("bus publish: %w", err)
	}
	return nil
}

// Subscribe consumes the given channels until ctx is cancelled. Channels
// containing '*' are pattern subscriptions. The handler is invoked inline,
// preserving per-channel order; malformed payloads are logged and skipped.
func (b *Bus) Subscribe(ctx context.Context, handler ports.EventHandler, channels ...string) error {
	var plain, patterns []string
	for _, ch := range channels {
		if strings.Contains(ch, "*") {
			patterns = append(patterns, ch)
		} else {
			plain = append(plain, ch)
		}
	}

	var pubsub *redis.PubSub
	if len(patterns) > 0 {
		pubsub = b.client.PSubscribe(ctx, patterns...)
		if len(plain) > 0 {
			if err := pubsub.Subscribe(ctx, plain...); err != nil {
				_ = pubsub.Close()
				return fmt.Errorf("bus subscribe: %w", err)
			}
		}
	} else {
		pubsub = b.client.Subscribe(ctx, plain...)
	}

	go func() {
		<-ctx.Done()
		_ = pubsub.Close()
	}()

	for msg := range pubsub.Channel() {
		var ev domain.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed bus message")
			continue
		}
		handler(msg.Channel, &ev)
	}

	return ctx.Err()
}
