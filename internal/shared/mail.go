package shared

import "context"

// Email is an outbound transactional message.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailEnqueuer hands an email off for asynchronous delivery. Enqueue failures
// are logged by callers and never abort the triggering business operation.
type EmailEnqueuer interface {
	Enqueue(ctx context.Context, email Email) error
}
