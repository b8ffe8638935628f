package worker

// notify_worker.go
// Processes notification jobs from QueueNotifications: reminder digests
// produced by the scheduler and ad-hoc report deliveries. Everything is
// sent to the configured maintenance inbox via SMTP.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/plradhouane-dev/gmao/internal/infra"

	"github.com/rs/zerolog/log"
)

// NotificationPayload is the job envelope sent to QueueNotifications.
type NotificationPayload struct {
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentPath string `json:"attachment_path,omitempty"`
}

// NotifyWorker delivers notification jobs through the SMTP mailer.
type NotifyWorker struct {
	mailer      *infra.Mailer
	notifyEmail string
}

func NewNotifyWorker(mailer *infra.Mailer, notifyEmail string) *NotifyWorker {
	return &NotifyWorker{mailer: mailer, notifyEmail: notifyEmail}
}

// Process sends one notification email. A returned error sends the job
// to the dead letter queue.
func (w *NotifyWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload NotificationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("notify_worker: invalid payload: %w", err)
	}
	if w.notifyEmail == "" {
		log.Warn().Msg("notify_worker: no notification email configured — skipping")
		return nil
	}

	if err := w.mailer.Send(w.notifyEmail, payload.Subject, payload.Body, payload.AttachmentPath); err != nil {
		return fmt.Errorf("notify_worker: send: %w", err)
	}
	log.Info().Str("to", w.notifyEmail).Str("subject", payload.Subject).Msg("notify_worker: notification sent")
	return nil
}
