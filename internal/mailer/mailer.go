package mailer

import (
	"context"

	"cattlesense/internal/config"
	"cattlesense/internal/logger"
)

// Mailer sends transactional email. Implementations must not block beyond
// the caller's context.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes the message to the log instead of delivering it.
// Default for local development.
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.Info("outbound email (log mailer)", map[string]any{
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	return nil
}

// New selects the mailer implementation from config.
func New(cfg config.Config) Mailer {
	switch cfg.MailerType {
	case "ses":
		return NewSESMailer(cfg)
	case "log":
		return &LogMailer{}
	default:
		logger.Warn("unknown mailer type, using log mailer", map[string]any{
			"type": cfg.MailerType,
		})
		return &LogMailer{}
	}
}
