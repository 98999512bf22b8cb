package api

import (
	"time"

	"helios/internal/pool"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	LastLogin string `json:"last_login,omitempty"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

type SessionResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	DesktopID    string `json:"desktop_id"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	ExpiresAt    string `json:"expires_at"`
	LastActiveAt string `json:"last_active_at"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type StatsResponse struct {
	Total          int `json:"total"`
	Available      int `json:"available"`
	Allocated      int `json:"allocated"`
	ActiveSessions int `json:"active_sessions"`
}

type ExecRequest struct {
	Command string `json:"command" binding:"required"`
}

type ExecResponse struct {
	Command    string `json:"command"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
}

type DisplayResponse struct {
	SessionID string `json:"session_id"`
	DesktopID string `json:"desktop_id"`
	Display   string `json:"display"`
	VNCAddr   string `json:"vnc_addr"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

func toSessionResponse(sess pool.Session) SessionResponse {
	return SessionResponse{
		ID:           sess.ID,
		UserID:       sess.UserID,
		DesktopID:    sess.DesktopID,
		Status:       string(sess.Status),
		CreatedAt:    formatTime(sess.CreatedAt),
		ExpiresAt:    formatTime(sess.ExpiresAt),
		LastActiveAt: formatTime(sess.LastActiveAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
