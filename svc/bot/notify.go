package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// NotifyBillReady messages every chat registered on the bill, then deletes
// the notify-me rows. The context must carry the tenant binding of the
// bill's gallery. Send failures are logged per chat; the rows are removed
// either way so one dead chat cannot re-trigger the whole set forever.
func (s *Service) NotifyBillReady(ctx context.Context, billCode string) error {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		`SELECT chat_id FROM bill_notifications WHERE bill_code = $1`, billCode)
	if err != nil {
		return err
	}

	var chatIDs []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			rows.Close()
			return err
		}
		chatIDs = append(chatIDs, chatID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, chatID := range chatIDs {
		text := fmt.Sprintf("Good news: bill %s is ready for pickup.", billCode)
		if _, err := s.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			s.logger.ErrorContext(ctx, "bill ready push failed",
				slog.Int64("chat_id", chatID),
				slog.String("bill_code", billCode),
				slog.String("error", err.Error()))
		}
	}

	_, err = conn.Exec(ctx,
		`DELETE FROM bill_notifications WHERE bill_code = $1`, billCode)
	return err
}
