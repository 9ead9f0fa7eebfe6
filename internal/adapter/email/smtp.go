package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"elitepay/config"

	"github.com/rs/zerolog"
)

// SMTPMailer delivers receipts over plain SMTP with AUTH PLAIN.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
	log  zerolog.Logger
}

// NewSMTPMailer creates an SMTPMailer from config. Returns nil when
// sending is disabled, which callers treat as no mailer at all.
func NewSMTPMailer(cfg config.SMTPConfig, log zerolog.Logger) *SMTPMailer {
	if !cfg.Enabled {
		return nil
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
		log:  log.With().Str("component", "smtp_mailer").Logger(),
	}
}

// Send delivers one message. The context is honored only between
// messages; net/smtp does not support per-dial cancellation.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	m.log.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
