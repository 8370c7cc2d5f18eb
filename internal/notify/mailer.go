package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer sends an HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTPMailer sends mail through an SMTP server with PLAIN auth.
type SMTPMailer struct {
	addr     string
	host     string
	username string
	password string
	from     string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTPMailer. addr is host:port.
func NewSMTPMailer(addr, host, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		addr:     addr,
		host:     host,
		username: username,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := m.send(m.addr, auth, m.from, []string{to}, buildMessage(m.from, to, subject, html)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	// Header values must not carry line breaks.
	clean := strings.NewReplacer("\r", "", "\n", "")

	return []byte(
		"From: " + clean.Replace(from) + "\r\n" +
			"To: " + clean.Replace(to) + "\r\n" +
			"Subject: " + clean.Replace(subject) + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			html,
	)
}

// LogMailer only logs outgoing mail. It is used when no SMTP server is configured.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "log_mailer").Logger()}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, html string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("bytes", len(html)).
		Msg("mail not sent, SMTP not configured")
	return nil
}
