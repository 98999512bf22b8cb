package audit

import (
	"encoding/json"
	"log/slog"

	"helios/internal/pool"

	"github.com/hibiken/asynq"
)

var _ pool.Recorder = (*Recorder)(nil)

// Recorder hands audit records to the task queue so persistence never sits on
// the allocation path. A failed enqueue is logged and dropped; auditing must
// not fail the operation it describes.
type Recorder struct {
	queueClient *asynq.Client
	logger      *slog.Logger
}

func NewRecorder(queueClient *asynq.Client, logger *slog.Logger) *Recorder {
	return &Recorder{
		queueClient: queueClient,
		logger:      logger.With("component", "audit-recorder"),
	}
}

func (r *Recorder) Record(ev pool.Event) {
	payload, _ := json.Marshal(LifecyclePayload{
		Type:      string(ev.Type),
		SessionID: ev.SessionID,
		UserID:    ev.UserID,
		DesktopID: ev.DesktopID,
		Timestamp: ev.Timestamp,
	})

	if _, err := r.queueClient.Enqueue(asynq.NewTask(LifecycleTask, payload)); err != nil {
		r.logger.Error("Failed to enqueue lifecycle audit", "session_id", ev.SessionID, "error", err)
	}
}

func (r *Recorder) RecordCommand(rec CommandRecord) {
	payload, _ := json.Marshal(rec)

	if _, err := r.queueClient.Enqueue(asynq.NewTask(CommandTask, payload)); err != nil {
		r.logger.Error("Failed to enqueue command audit", "command", rec.Command, "error", err)
	}
}
