package repo

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
)

type LifecycleEventModel struct {
	ID        int64     `json:"id" pg:"id,pk"`
	Type      string    `json:"type" pg:"type,notnull"`
	SessionID string    `json:"session_id" pg:"session_id,notnull"`
	UserID    string    `json:"user_id" pg:"user_id,notnull"`
	DesktopID string    `json:"desktop_id" pg:"desktop_id,notnull"`
	Timestamp time.Time `json:"timestamp" pg:"timestamp,notnull"`
}

type CommandAuditModel struct {
	ID         int64     `json:"id" pg:"id,pk"`
	UserID     string    `json:"user_id" pg:"user_id"`
	Command    string    `json:"command" pg:"command,notnull"`
	Args       []string  `json:"args" pg:"args,array"`
	ExitCode   int       `json:"exit_code" pg:"exit_code,use_zero"`
	Stdout     string    `json:"stdout" pg:"stdout"`
	Stderr     string    `json:"stderr" pg:"stderr"`
	DurationMs int64     `json:"duration_ms" pg:"duration_ms,use_zero"`
	ExecutedAt time.Time `json:"executed_at" pg:"executed_at,notnull"`
}

type Repository struct {
	db *pg.DB
}

func NewRepository(db *pg.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertLifecycle(ctx context.Context, model *LifecycleEventModel) error {
	_, err := r.db.ModelContext(ctx, model).Insert()
	return err
}

func (r *Repository) InsertCommand(ctx context.Context, model *CommandAuditModel) error {
	_, err := r.db.ModelContext(ctx, model).Insert()
	return err
}

// ListLifecycle returns the most recent lifecycle events for one user, or for
// everyone when userID is empty, newest first.
func (r *Repository) ListLifecycle(ctx context.Context, userID string, limit int) ([]LifecycleEventModel, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []LifecycleEventModel
	q := r.db.ModelContext(ctx, &models).
		Order("timestamp DESC").
		Limit(limit)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Select(); err != nil {
		return nil, err
	}
	return models, nil
}

// ListCommands returns the most recent command audits for one user, or for
// everyone when userID is empty.
func (r *Repository) ListCommands(ctx context.Context, userID string, limit int) ([]CommandAuditModel, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []CommandAuditModel
	q := r.db.ModelContext(ctx, &models).
		Order("executed_at DESC").
		Limit(limit)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Select(); err != nil {
		return nil, err
	}
	return models, nil
}
