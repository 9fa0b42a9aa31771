package mailer

import (
	"context"
	"log/slog"
)

// DevSender logs messages instead of delivering them. Used in development
// and in tests.
type DevSender struct {
	logger *slog.Logger
}

// NewDevSender creates a logging sender.
func NewDevSender(logger *slog.Logger) *DevSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &DevSender{logger: logger}
}

func (s *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	s.logger.InfoContext(ctx, "dev mailer: email suppressed",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject))
	return nil
}
