package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/mail.v2"

	"mtasks/internal/infrastructure/config"
)

// SMTPMailer delivers plain-text mail through an SMTP server
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// NewSMTPMailer creates a mailer from SMTP settings
func NewSMTPMailer(cfg config.MailConfig, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger.With().Str("component", "smtp").Logger(),
	}
}

// Send sends one message. The context only gates the start of the send;
// the SMTP exchange itself is bounded by the dialer timeout.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error().Err(err).Str("to", to).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "mail").Logger()}
}

// Send logs the message at warn level so it shows with default settings
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Warn().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("SMTP not configured, message not sent")
	return nil
}

// Sender is implemented by both mailers
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer picks SMTP when a host is configured and the log mailer otherwise
func NewMailer(cfg config.MailConfig, logger zerolog.Logger) Sender {
	if cfg.Host == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}
