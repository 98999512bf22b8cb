package eventbus

import "context"

// EventBus distributes session lifecycle events to live subscribers. Publish
// is best-effort fan-out with no delivery guarantee once a session has no
// subscribers. Subscribe returns a channel that closes when ctx is cancelled.
type EventBus interface {
	Publish(ctx context.Context, sessionID string, event Event) error
	Subscribe(ctx context.Context, sessionID string) (<-chan Event, error)
}
