package pool

import "time"

type InstanceStatus string

const (
	InstanceAvailable    InstanceStatus = "available"
	InstanceAllocated    InstanceStatus = "allocated"
	InstanceProvisioning InstanceStatus = "provisioning"
	InstanceError        InstanceStatus = "error"
)

type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionExpired SessionStatus = "expired"
	SessionEnded   SessionStatus = "ended"
)

// DesktopInstance is one allocatable desktop unit. Instances are created once
// at pool initialization and only ever reset between sessions, never destroyed.
type DesktopInstance struct {
	ID                string         `json:"id"`
	Status            InstanceStatus `json:"status"`
	AssignedSessionID string         `json:"assigned_session_id,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	LastReleasedAt    time.Time      `json:"last_released_at,omitzero"`
}

// Session is a time-bounded claim by one user on one desktop instance.
// DesktopID is set once at allocation and never changes.
type Session struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	DesktopID    string        `json:"desktop_id"`
	Status       SessionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
}

// Stats is a consistent snapshot of pool utilization.
// Available + Allocated == Total holds for every snapshot.
type Stats struct {
	Total          int `json:"total"`
	Available      int `json:"available"`
	Allocated      int `json:"allocated"`
	ActiveSessions int `json:"active_sessions"`
}

type Config struct {
	SessionTTL time.Duration
}

type EventType string

const (
	EventAllocated EventType = "session.allocated"
	EventReleased  EventType = "session.released"
	EventExpired   EventType = "session.expired"
)

// Event is a lifecycle record handed to the audit collaborator.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	DesktopID string    `json:"desktop_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder receives lifecycle events. Implementations must not block for long;
// the manager calls Record outside its lock but on the request path.
type Recorder interface {
	Record(ev Event)
}

// NopRecorder discards events.
type NopRecorder struct{}

func (NopRecorder) Record(Event) {}

// MultiRecorder fans one event out to several collaborators.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ev Event) {
	for _, r := range m {
		r.Record(ev)
	}
}
