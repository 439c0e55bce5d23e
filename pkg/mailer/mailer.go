// Package mailer sends plain-text email over SMTP, or logs it when no SMTP
// host is configured.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

const subjectPrefix = "[IACOL] "

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers messages.
type Mailer struct {
	cfg  config.MailConfig
	logg *logger.Logger
	send sendFunc
	now  func() time.Time
}

func New(cfg config.MailConfig, logg *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, logg: logg, send: smtp.SendMail, now: time.Now}
}

// Send delivers msg. Without SMTP settings the message is written to the log instead.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	for _, rcpt := range msg.To {
		if strings.ContainsAny(rcpt, "\r\n") {
			return fmt.Errorf("invalid recipient %q", rcpt)
		}
	}
	subject := strings.NewReplacer("\r", " ", "\n", " ").Replace(subjectPrefix + msg.Subject)

	if !m.cfg.Enabled() {
		logCtx := m.logg.WithFields(ctx, map[string]any{
			"to":      strings.Join(msg.To, ","),
			"subject": subject,
		})
		m.logg.Info(logCtx, "smtp disabled, email logged only")
		return nil
	}

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	if err := m.send(addr, auth, m.cfg.DefaultFrom, msg.To, m.build(subject, msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (m *Mailer) build(subject string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.DefaultFrom)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
