package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"mtasks/internal/infrastructure/config"
)

func TestNewMailer_FallsBackToLog(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	m := NewMailer(config.MailConfig{}, logger)
	_, isLog := m.(*LogMailer)
	is.True(isLog)

	is.NoErr(m.Send(context.Background(), "a@b.c", "Reset", "token-123"))
	is.True(strings.Contains(buf.String(), "token-123"))

	_, isSMTP := NewMailer(config.MailConfig{Host: "smtp.example.com", Port: 587}, logger).(*SMTPMailer)
	is.True(isSMTP)
}

func TestSMTPMailer_RespectsCancelledContext(t *testing.T) {
	is := is.New(t)
	m := NewSMTPMailer(config.MailConfig{Host: "127.0.0.1", Port: 1}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	is.True(m.Send(ctx, "a@b.c", "s", "b") != nil)
}
