package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	LastLogin time.Time `json:"last_login,omitzero"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository persists accounts. Password hashes never leave the repo
// except through GetCredentials.
type UserRepository interface {
	Create(ctx context.Context, user *User, passwordHash string) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetCredentials(ctx context.Context, username string) (*User, string, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
