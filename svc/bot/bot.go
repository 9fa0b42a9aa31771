package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5"

	"github.com/pardaaf/backoffice/pkg/botstate"
	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

// Config holds the Telegram credentials.
type Config struct {
	Token string `env:"TELEGRAM_BOT_TOKEN,required"`
}

// Sender is the slice of the Telegram API the bot uses. tgbotapi.BotAPI
// satisfies it; tests inject a recorder.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Directory resolves gallery codenames users type into chat messages.
type Directory interface {
	Resolve(ctx context.Context, codename string) (catalog.Gallery, error)
}

// Service handles webhook updates and pushes bill-ready notifications.
type Service struct {
	api      Sender
	catalog  Directory
	registry *dbpool.Registry
	states   *botstate.Store
	logger   *slog.Logger
}

// New creates the bot service.
func New(api Sender, directory Directory, registry *dbpool.Registry, states *botstate.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:      api,
		catalog:  directory,
		registry: registry,
		states:   states,
		logger:   logger,
	}
}

const helpText = "Commands:\n" +
	"/link - connect your staff account\n" +
	"/checkbillstatus - look up a bill\n" +
	"/notify - get a message when a bill is ready\n" +
	"/start - cancel and start over"

// HandleUpdate processes one webhook update. Failures are answered in chat
// and logged; nothing propagates back to the webhook route.
func (s *Service) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if msg.IsCommand() {
		s.handleCommand(ctx, chatID, msg.Command())
		return
	}

	state, err := s.states.Get(ctx, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "bot state read failed",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		s.reply(ctx, chatID, "Something went wrong, please try again.")
		return
	}

	switch state {
	case botstate.AwaitingUsername:
		s.completeLink(ctx, chatID, text)
	case botstate.AwaitingBillCheck:
		s.completeBillCheck(ctx, chatID, text)
	case botstate.AwaitingBillNumber:
		s.completeNotify(ctx, chatID, text)
	default:
		s.reply(ctx, chatID, helpText)
	}
}

func (s *Service) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		s.setState(ctx, chatID, botstate.Idle)
		s.reply(ctx, chatID, "Welcome to the pardaaf bot.\n\n"+helpText)
	case "link":
		s.setState(ctx, chatID, botstate.AwaitingUsername)
		s.reply(ctx, chatID, "Send your account as username@gallery, for example basir@gallery_a.")
	case "checkbillstatus":
		s.setState(ctx, chatID, botstate.AwaitingBillCheck)
		s.reply(ctx, chatID, "Send the bill as code@gallery, for example B42@gallery_a.")
	case "notify":
		s.setState(ctx, chatID, botstate.AwaitingBillNumber)
		s.reply(ctx, chatID, "Send the bill as code@gallery and I will message you when it is ready.")
	default:
		s.reply(ctx, chatID, helpText)
	}
}

func (s *Service) completeLink(ctx context.Context, chatID int64, text string) {
	username, gallery, ok := s.resolveRef(ctx, chatID, text)
	if !ok {
		return
	}
	tctx := tenantctx.WithDatabase(ctx, gallery.DBName)

	conn, err := s.registry.Acquire(tctx)
	if err != nil {
		s.replyUnavailable(ctx, chatID, err)
		return
	}
	defer conn.Release()

	tag, err := conn.Exec(tctx,
		`UPDATE users SET chat_id = $1 WHERE username = $2`, chatID, username)
	if err != nil {
		s.replyUnavailable(ctx, chatID, err)
		return
	}
	if tag.RowsAffected() == 0 {
		s.reply(ctx, chatID, fmt.Sprintf("No account %q in %s. Check the spelling and /link again.", username, gallery.Name))
		s.setState(ctx, chatID, botstate.Idle)
		return
	}

	s.setState(ctx, chatID, botstate.Idle)
	s.reply(ctx, chatID, fmt.Sprintf("Linked. You will receive staff notifications for %s here.", gallery.Name))
}

func (s *Service) completeBillCheck(ctx context.Context, chatID int64, text string) {
	code, gallery, ok := s.resolveRef(ctx, chatID, text)
	if !ok {
		return
	}
	tctx := tenantctx.WithDatabase(ctx, gallery.DBName)

	status, err := s.billStatus(tctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		s.reply(ctx, chatID, fmt.Sprintf("No bill %s at %s.", code, gallery.Name))
		s.setState(ctx, chatID, botstate.Idle)
		return
	}
	if err != nil {
		s.replyUnavailable(ctx, chatID, err)
		return
	}

	s.setState(ctx, chatID, botstate.Idle)
	s.reply(ctx, chatID, fmt.Sprintf("Bill %s is %s.", code, status))
}

func (s *Service) completeNotify(ctx context.Context, chatID int64, text string) {
	code, gallery, ok := s.resolveRef(ctx, chatID, text)
	if !ok {
		return
	}
	tctx := tenantctx.WithDatabase(ctx, gallery.DBName)

	status, err := s.billStatus(tctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		s.reply(ctx, chatID, fmt.Sprintf("No bill %s at %s.", code, gallery.Name))
		s.setState(ctx, chatID, botstate.Idle)
		return
	}
	if err != nil {
		s.replyUnavailable(ctx, chatID, err)
		return
	}
	if status == "ready" {
		s.setState(ctx, chatID, botstate.Idle)
		s.reply(ctx, chatID, fmt.Sprintf("Bill %s is already ready.", code))
		return
	}

	conn, err := s.registry.Acquire(tctx)
	if err != nil {
		s.replyUnavailable(ctx, chatID, err)
		return
	}
	defer conn.Release()

	_, err = conn.Exec(tctx,
		`INSERT INTO bill_notifications (chat_id, bill_code, created_at)
		 VALUES ($1, $2, now()) ON CONFLICT DO NOTHING`, chatID, code)
	if err != nil {
		s.replyUnavailable(ctx, chatID, err)
		return
	}

	s.setState(ctx, chatID, botstate.Idle)
	s.reply(ctx, chatID, fmt.Sprintf("Noted. I will message you when bill %s is ready.", code))
}

// resolveRef parses "left@codename" and resolves the gallery. On failure
// it answers the chat itself and reports !ok.
func (s *Service) resolveRef(ctx context.Context, chatID int64, text string) (string, catalog.Gallery, bool) {
	left, codename, found := strings.Cut(text, "@")
	left, codename = strings.TrimSpace(left), strings.TrimSpace(codename)
	if !found || left == "" || codename == "" {
		s.reply(ctx, chatID, "That does not look right. Use the form value@gallery, for example B42@gallery_a.")
		return "", catalog.Gallery{}, false
	}

	gallery, err := s.catalog.Resolve(ctx, codename)
	if errors.Is(err, catalog.ErrGalleryNotFound) || errors.Is(err, catalog.ErrInvalidCodename) {
		s.reply(ctx, chatID, fmt.Sprintf("I do not know a gallery called %q.", codename))
		return "", catalog.Gallery{}, false
	}
	if err != nil {
		s.replyUnavailable(ctx, chatID, err)
		return "", catalog.Gallery{}, false
	}
	return left, gallery, true
}

func (s *Service) billStatus(ctx context.Context, code string) (string, error) {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Release()

	var status string
	err = conn.QueryRow(ctx, `SELECT status FROM bills WHERE code = $1`, code).Scan(&status)
	return status, err
}

func (s *Service) setState(ctx context.Context, chatID int64, state botstate.State) {
	if err := s.states.Set(ctx, chatID, state); err != nil {
		s.logger.ErrorContext(ctx, "bot state write failed",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

func (s *Service) replyUnavailable(ctx context.Context, chatID int64, err error) {
	s.logger.ErrorContext(ctx, "bot backend call failed",
		slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	s.reply(ctx, chatID, "The gallery system is not reachable right now, please try again later.")
}

func (s *Service) reply(ctx context.Context, chatID int64, text string) {
	if _, err := s.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		s.logger.ErrorContext(ctx, "telegram send failed",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}
