// Package email sends requester-facing notifications.
package email

import (
	"context"

	"brandscope_backend/platform/config"
)

// Sender delivers analysis lifecycle emails.
type Sender interface {
	SendQueuedConfirmationEmail(ctx context.Context, toEmail, brandName, language string) error
	SendAnalysisResultEmail(ctx context.Context, toEmail, brandName, language, result string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendQueuedConfirmationEmail(ctx context.Context, toEmail, brandName, language string) error {
	return nil
}

func (NoopSender) SendAnalysisResultEmail(ctx context.Context, toEmail, brandName, language, result string) error {
	return nil
}

// NewSender picks the concrete sender from configuration.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
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
