package jobs

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

// runNotifySweep re-delivers bill-ready notifications that were missed at
// status-update time (for example when the process restarted between the
// update and the push), and sends each gallery's staff chat a morning
// count of undelivered bills.
func (s *Service) runNotifySweep(ctx context.Context) error {
	mainCtx := tenantctx.WithDatabase(ctx, dbpool.MainDatabase)

	galleries, err := s.catalog.Galleries(mainCtx)
	if err != nil {
		return err
	}

	for _, gallery := range galleries {
		tenantCtx := tenantctx.WithDatabase(mainCtx, gallery.DBName)

		if err := s.flushReadyNotifications(tenantCtx); err != nil {
			s.logger.ErrorContext(tenantCtx, "notify sweep failed",
				slog.String("db_name", gallery.DBName),
				slog.String("error", err.Error()))
		}

		if gallery.ChatID != 0 && s.chat != nil {
			if err := s.sendStaffDigest(tenantCtx, gallery.ChatID); err != nil {
				s.logger.ErrorContext(tenantCtx, "staff digest failed",
					slog.String("db_name", gallery.DBName),
					slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

// flushReadyNotifications pushes notify-me rows whose bill is already
// ready but whose subscribers were never messaged.
func (s *Service) flushReadyNotifications(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}

	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return err
	}

	rows, err := conn.Query(ctx,
		`SELECT DISTINCT n.bill_code
		   FROM bill_notifications n
		   JOIN bills b ON b.code = n.bill_code
		  WHERE b.status = 'ready'`)
	if err != nil {
		conn.Release()
		return err
	}

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			conn.Release()
			return err
		}
		codes = append(codes, code)
	}
	rows.Close()
	err = rows.Err()
	conn.Release()
	if err != nil {
		return err
	}

	for _, code := range codes {
		if err := s.notifier.NotifyBillReady(ctx, code); err != nil {
			s.logger.ErrorContext(ctx, "sweep push failed",
				slog.String("bill_code", code),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Service) sendStaffDigest(ctx context.Context, chatID int64) error {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	var open, due int
	err = conn.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE status <> 'delivered'),
		        count(*) FILTER (WHERE status <> 'delivered' AND due_date <= now())
		   FROM bills`).Scan(&open, &due)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Good morning. %d bills are open, %d of them due.", open, due)
	_, err = s.chat.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
