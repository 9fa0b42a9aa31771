package faultlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/mailer"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

// Config holds the admin alert address.
type Config struct {
	AdminEmail string `env:"FAULT_ADMIN_EMAIL,required"`
}

// Sink records internal errors.
type Sink struct {
	registry   *dbpool.Registry
	sender     mailer.EmailSender
	adminEmail string
	logger     *slog.Logger
}

// New creates a sink. A nil sender disables the email half.
func New(registry *dbpool.Registry, sender mailer.EmailSender, cfg Config, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		registry:   registry,
		sender:     sender,
		adminEmail: cfg.AdminEmail,
		logger:     logger,
	}
}

// Report persists the error in the current tenant's log table and mails
// the admin. Both halves are best-effort: a broken sink must never take
// down the request or job that reported through it.
func (s *Sink) Report(ctx context.Context, source string, reportErr error) {
	if reportErr == nil {
		return
	}

	s.logger.ErrorContext(ctx, "internal error",
		slog.String("source", source),
		slog.String("error", reportErr.Error()))

	if _, err := tenantctx.Database(ctx); err == nil {
		s.persist(ctx, source, reportErr)
	}

	if s.sender != nil && s.adminEmail != "" {
		params := mailer.SendEmailParams{
			SendTo:   s.adminEmail,
			Subject:  fmt.Sprintf("pardaaf error in %s", source),
			BodyHTML: fmt.Sprintf("<pre>%s</pre>", reportErr.Error()),
		}
		if err := s.sender.SendEmail(ctx, params); err != nil {
			s.logger.ErrorContext(ctx, "fault email failed", slog.String("error", err.Error()))
		}
	}
}

func (s *Sink) persist(ctx context.Context, source string, reportErr error) {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "fault row not persisted", slog.String("error", err.Error()))
		return
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO log (source, message, created_at) VALUES ($1, $2, now())`,
		source, reportErr.Error())
	if err != nil {
		s.logger.ErrorContext(ctx, "fault row not persisted", slog.String("error", err.Error()))
	}
}
