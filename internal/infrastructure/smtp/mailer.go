package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/portfolio-api/internal/config"
	"github.com/portfolio-api/internal/pkg/id"
)

// Mailer is the outbound mail transport. It promises a single delivery
// attempt per call — no retries, no queuing; callers own failure handling.
type Mailer interface {
	// Send delivers one HTML email and returns a receipt id. net/smtp does
	// not expose the server's message id, so the receipt is generated locally.
	Send(ctx context.Context, to, subject, html string) (string, error)
}

type mailer struct {
	host     string
	port     string
	from     string
	fromName string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		fromName: cfg.Newsletter.FromName,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", m.fromName, m.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	msg.WriteString(html)

	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return id.New(), nil
}
