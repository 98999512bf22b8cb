package eventbus

import (
	"context"
	"log/slog"
	"time"

	"helios/internal/pool"
)

var _ pool.Recorder = (*PoolRecorder)(nil)

// PoolRecorder republishes pool lifecycle events onto the session's event
// channel so live subscribers (the websocket stream) see them as they happen.
type PoolRecorder struct {
	bus    EventBus
	logger *slog.Logger
}

func NewPoolRecorder(bus EventBus, logger *slog.Logger) *PoolRecorder {
	return &PoolRecorder{bus: bus, logger: logger.With("component", "eventbus-recorder")}
}

func (r *PoolRecorder) Record(ev pool.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := r.bus.Publish(ctx, ev.SessionID, Event{
		Type:      EventType(ev.Type),
		SessionID: ev.SessionID,
		DesktopID: ev.DesktopID,
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		r.logger.Error("Failed to publish lifecycle event", "session_id", ev.SessionID, "error", err)
	}
}
