package audit

import "time"

const (
	LifecycleTask = "audit:lifecycle"
	CommandTask   = "audit:command"
)

// LifecyclePayload mirrors pool.Event across the task queue.
type LifecyclePayload struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	DesktopID string    `json:"desktop_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CommandRecord captures one whitelisted command invocation.
type CommandRecord struct {
	UserID     string        `json:"user_id"`
	Command    string        `json:"command"`
	Args       []string      `json:"args"`
	ExitCode   int           `json:"exit_code"`
	Stdout     string        `json:"stdout"`
	Stderr     string        `json:"stderr"`
	Duration   time.Duration `json:"duration"`
	ExecutedAt time.Time     `json:"executed_at"`
}
