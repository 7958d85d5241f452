package alerting

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"gpu-stock-alerts/internal/config"
	"gpu-stock-alerts/internal/monitor"
)

// sendFunc matches smtp.SendMail; injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier delivers alerts as HTML mail over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg    config.EmailConfig
	logger zerolog.Logger
	send   sendFunc
}

// NewEmailNotifier constructs an SMTP notifier from config.
func NewEmailNotifier(cfg config.EmailConfig, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger.With().Str("component", "alert_email").Logger(),
		send:   smtp.SendMail,
	}
}

// Notify renders the event and hands it to the SMTP server. Errors are
// returned for logging but are never fatal to the caller.
func (n *EmailNotifier) Notify(ctx context.Context, event monitor.AlertEvent) error {
	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}

	subject := n.subject(event.Kind)
	msg := buildMessage(from, n.cfg.Recipient, subject, RenderHTML(event))

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)

	if err := n.send(addr, auth, from, []string{n.cfg.Recipient}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info().
		Str("kind", event.Kind.String()).
		Str("recipient", n.cfg.Recipient).
		Str("subject", subject).
		Msg("alert email sent")
	return nil
}

func (n *EmailNotifier) subject(kind monitor.AlertKind) string {
	switch kind {
	case monitor.AlertProductAvailable:
		return n.cfg.ProductSubject
	case monitor.AlertAPIDown:
		return n.cfg.DownSubject
	case monitor.AlertAPIRecovered:
		return n.cfg.RecoveredSubject
	case monitor.AlertSKUSetChanged:
		return n.cfg.ChangedSubject
	}
	return n.cfg.ProductSubject
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

var _ monitor.Notifier = (*EmailNotifier)(nil)
