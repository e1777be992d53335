// Package notify handles outbound email: transport (SMTP) and the
// plain-text composition of alert messages.
//
// Delivery is best-effort by contract. Callers log failures and carry
// on; nothing in the pipeline treats a failed send as fatal, and the
// triggering workflow (watch creation, poll cycle, webhook ingestion)
// always succeeds or fails on its own terms.
package notify

import (
	"context"
	"errors"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// ErrDelivery wraps any transport-level send failure so callers can
// classify it as the soft, non-fatal kind.
var ErrDelivery = errors.New("delivery failed")

// Mailer sends one plain-text message to one recipient. Implementations
// must be safe for concurrent use and should honor ctx cancellation
// where the transport allows it.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig carries the SMTP endpoint and sender identity.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers via a plain SMTP dialer. Each Send dials a fresh
// connection; alert volume is low enough that pooling would buy nothing.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer builds a Mailer for the given endpoint.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send implements Mailer. The context is checked before dialing; gomail
// itself has no context support, so an in-flight send runs to its own
// timeout.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
