package email

import (
	"context"

	"restockd_backend/platform/config"
)

type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, displayName, role string) error
}

type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, displayName, role string) error {
	return nil
}

// NewSender returns an SMTP sender when email is enabled and a NoopSender
// otherwise.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
