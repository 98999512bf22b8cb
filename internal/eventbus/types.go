package eventbus

import "time"

type EventType string

const (
	EventSessionAllocated EventType = "session.allocated"
	EventSessionReleased  EventType = "session.released"
	EventSessionExpired   EventType = "session.expired"
)

type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	DesktopID string    `json:"desktop_id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
