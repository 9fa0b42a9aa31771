package mailer

import (
	"context"
	"log/slog"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams are the fields of one outbound message.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
}

// New returns the sender for cfg: the SMTP relay normally, the logging
// DevSender when dev mode is on.
func New(cfg Config, logger *slog.Logger) (EmailSender, error) {
	if cfg.DevMode {
		return NewDevSender(logger), nil
	}
	return NewSMTPSender(cfg)
}
