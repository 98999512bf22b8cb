package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"helios/internal/audit/repo"

	"github.com/hibiken/asynq"
)

// Worker drains audit tasks from the queue into postgres.
type Worker struct {
	repo   *repo.Repository
	logger *slog.Logger
}

func NewWorker(r *repo.Repository, logger *slog.Logger) *Worker {
	return &Worker{
		repo:   r,
		logger: logger.With("component", "audit-worker"),
	}
}

func (w *Worker) HandleLifecycle(ctx context.Context, task *asynq.Task) error {
	var payload LifecyclePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal lifecycle payload: %w", err)
	}

	err := w.repo.InsertLifecycle(ctx, &repo.LifecycleEventModel{
		Type:      payload.Type,
		SessionID: payload.SessionID,
		UserID:    payload.UserID,
		DesktopID: payload.DesktopID,
		Timestamp: payload.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("insert lifecycle event: %w", err)
	}

	w.logger.Debug("Lifecycle event recorded", "type", payload.Type, "session_id", payload.SessionID)
	return nil
}

func (w *Worker) HandleCommand(ctx context.Context, task *asynq.Task) error {
	var rec CommandRecord
	if err := json.Unmarshal(task.Payload(), &rec); err != nil {
		return fmt.Errorf("unmarshal command payload: %w", err)
	}

	err := w.repo.InsertCommand(ctx, &repo.CommandAuditModel{
		UserID:     rec.UserID,
		Command:    rec.Command,
		Args:       rec.Args,
		ExitCode:   rec.ExitCode,
		Stdout:     truncate(rec.Stdout, 2000),
		Stderr:     truncate(rec.Stderr, 2000),
		DurationMs: rec.Duration.Milliseconds(),
		ExecutedAt: rec.ExecutedAt,
	})
	if err != nil {
		return fmt.Errorf("insert command audit: %w", err)
	}

	w.logger.Debug("Command audit recorded", "command", rec.Command, "user_id", rec.UserID)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
