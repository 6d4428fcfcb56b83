// Package mail sends transactional email over SMTP. It is consumed only by
// the background worker; request handlers enqueue instead of sending inline.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers plain-text email via a single SMTP relay.
type Sender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSender constructs a Sender. Username may be empty for unauthenticated
// relays such as a local Mailpit instance.
func NewSender(host string, port int, from, username, password string) *Sender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Sender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

// Send delivers one message. The context is honoured only before dialing;
// net/smtp does not support mid-session cancellation.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("platform/mail: send to %s: %w", to, err)
	}
	return nil
}
