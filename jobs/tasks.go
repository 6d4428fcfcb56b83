package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/practicheck/practicheck/internal/platform/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSendEmailHandler returns the worker-side handler delivering queued mail
// through the SMTP sender. A payload that cannot be decoded is dropped; a
// delivery failure is retried by Asynq.
func NewSendEmailHandler(sender *mail.Sender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("send email task: bad payload", "error", err)
			return asynq.SkipRetry
		}
		if err := sender.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			logger.Warn("send email task failed", "to", payload.To, "error", err)
			return err
		}
		logger.Info("email delivered", "to", payload.To, "subject", payload.Subject)
		return nil
	}
}
