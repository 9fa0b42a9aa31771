package gateway

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleTelegramWebhook hands the decoded update to the bot. Telegram
// retries non-2xx responses, so a malformed body is acknowledged rather
// than bounced forever.
func (s *Service) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if s.bot == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.bot.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}
