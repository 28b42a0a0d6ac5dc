// Package email provides outbound mail delivery for operational
// notifications.
package email

import (
	"context"

	"github.com/wneessen/go-mail"

	"timeclock_backend/platform/config"
	"timeclock_backend/platform/logger"
)

// Message is a plain-text outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers outbound mail.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail over authenticated SMTP.
type SMTPSender struct {
	cfg config.EmailConfig
	log *logger.Logger
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg config.EmailConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

// Send delivers one message. A client is dialed per send; notification volume
// is too low to justify a connection pool.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.GetEmailFromName(), s.cfg.GetEmailFromAddress()); err != nil {
		return err
	}
	if err := m.To(msg.To); err != nil {
		return err
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(s.cfg.GetSMTPHost(),
		mail.WithPort(s.cfg.GetSMTPPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.GetSMTPUsername()),
		mail.WithPassword(s.cfg.GetSMTPPassword()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return err
	}

	s.log.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NoopSender drops all mail. Used when email delivery is disabled.
type NoopSender struct {
	log *logger.Logger
}

// NewNoopSender creates a sender that logs and discards messages.
func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

// Send logs the message and discards it.
func (s *NoopSender) Send(_ context.Context, msg Message) error {
	s.log.Debug("email delivery disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewSender picks the sender implementation from configuration.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if cfg.GetEmailEnabled() {
		return NewSMTPSender(cfg, log)
	}
	return NewNoopSender(log)
}

// Compile-time checks.
var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*NoopSender)(nil)
)
