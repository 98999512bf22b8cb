package api

import (
	"context"
	"log/slog"
	"net/http"

	"helios/internal/eventbus"
	"helios/internal/pool"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the desktop frontend origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type EventsHandler struct {
	mgr    *pool.Manager
	bus    eventbus.EventBus
	logger *slog.Logger
}

func NewEventsHandler(mgr *pool.Manager, bus eventbus.EventBus, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{mgr: mgr, bus: bus, logger: logger.With("component", "events-ws")}
}

// StreamEvents upgrades to a websocket and forwards the session's lifecycle
// events until the session disappears or the client goes away.
func (h *EventsHandler) StreamEvents(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.mgr.GetSession(id); err != nil {
		respondError(c, mapPoolError(err), err)
		return
	}

	// The subscription lives exactly as long as this handler: cancelling the
	// context is what releases the bus resources.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, err := h.bus.Subscribe(ctx, id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed", "session_id", id, "error", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close/ping handling works; we never read
	// payloads. A read error means the client went away, which must also end
	// the subscription.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("Websocket write failed", "session_id", id, "error", err)
				return
			}
			// Released and expired are terminal; close after delivering.
			if event.Type == eventbus.EventSessionReleased || event.Type == eventbus.EventSessionExpired {
				return
			}
		}
	}
}
