package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix is the redis channel namespace for desktop session
// lifecycle events. A session's channel is "<prefix><session-id>".
const DefaultChannelPrefix = "helios:session:"

var _ EventBus = (*RedisBus)(nil)

// RedisBus carries desktop session lifecycle events over redis pub/sub, one
// channel per session, so a subscriber only sees traffic for the session it
// is watching.
type RedisBus struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisBus(client *redis.Client, logger *slog.Logger) *RedisBus {
	return NewRedisBusWithPrefix(client, DefaultChannelPrefix, logger)
}

// NewRedisBusWithPrefix overrides the channel namespace, for deployments
// sharing one redis between environments.
func NewRedisBusWithPrefix(client *redis.Client, prefix string, logger *slog.Logger) *RedisBus {
	return &RedisBus{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "eventbus"),
	}
}

func (b *RedisBus) channelKey(sessionID string) string {
	return b.prefix + sessionID
}

func (b *RedisBus) Publish(ctx context.Context, sessionID string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return b.client.Publish(ctx, b.channelKey(sessionID), data).Err()
}

// Subscribe opens a per-session subscription. The returned channel closes when
// ctx is cancelled; cancellation is the only way to release the underlying
// redis subscription, so callers must tie ctx to the consumer's lifetime.
func (b *RedisBus) Subscribe(ctx context.Context, sessionID string) (<-chan Event, error) {
	pubSub := b.client.Subscribe(ctx, b.channelKey(sessionID))
	if _, err := pubSub.Receive(ctx); err != nil {
		pubSub.Close()
		return nil, fmt.Errorf("subscribe session %s: %w", sessionID, err)
	}

	// Closing the pubsub is what unblocks Channel() in the pump below.
	go func() {
		<-ctx.Done()
		if err := pubSub.Close(); err != nil {
			b.logger.Error("Failed to close pubsub", "session_id", sessionID, "error", err)
		}
	}()

	ch := make(chan Event)
	go func() {
		defer close(ch)
		for msg := range pubSub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Error("Failed to unmarshal event", "session_id", sessionID, "error", err)
				continue
			}
			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
