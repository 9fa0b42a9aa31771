package mailer

import (
	"context"
	"errors"

	"github.com/wneessen/go-mail"
)

// SMTPSender delivers mail through the configured relay.
type SMTPSender struct {
	client    *mail.Client
	fromEmail string
	fromName  string
}

// NewSMTPSender builds a sender from config.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.FromEmail == "" {
		return nil, ErrInvalidConfig
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	return &SMTPSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}, nil
}

// SendEmail sends one HTML message through the relay.
func (s *SMTPSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if err := msg.To(params.SendTo); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	msg.Subject(params.Subject)
	msg.SetBodyString(mail.TypeTextHTML, params.BodyHTML)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
