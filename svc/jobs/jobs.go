package jobs

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/mailer"
	"github.com/pardaaf/backoffice/pkg/schedule"
)

// Directory is the slice of the master catalog the jobs read and write.
type Directory interface {
	Galleries(ctx context.Context) ([]catalog.Gallery, error)
	Databases(ctx context.Context) ([]string, error)
	UpsertRate(ctx context.Context, r catalog.Rate) error
}

// Notifier flushes pending bill-ready subscriptions for one bill. The
// context carries the tenant binding.
type Notifier interface {
	NotifyBillReady(ctx context.Context, billCode string) error
}

// ChatSender pushes a message to a staff chat.
type ChatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Service owns the scheduled job bodies.
type Service struct {
	registry *dbpool.Registry
	catalog  Directory
	mail     mailer.EmailSender
	notifier Notifier
	chat     ChatSender
	backup   BackupConfig
	fx       FxConfig
	dbCfg    dbpool.Config
	logger   *slog.Logger
}

// Deps are the collaborators the job bodies need. Mail, Notifier and Chat
// may be nil; the jobs that need them degrade to logging.
type Deps struct {
	Registry *dbpool.Registry
	Catalog  Directory
	Mail     mailer.EmailSender
	Notifier Notifier
	Chat     ChatSender
	Backup   BackupConfig
	Fx       FxConfig
	DBConfig dbpool.Config
	Logger   *slog.Logger
}

// New creates the job service.
func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: deps.Registry,
		catalog:  deps.Catalog,
		mail:     deps.Mail,
		notifier: deps.Notifier,
		chat:     deps.Chat,
		backup:   deps.Backup,
		fx:       deps.Fx,
		dbCfg:    deps.DBConfig,
		logger:   logger,
	}
}

// RegisterAll wires the full production calendar into the runner.
func (s *Service) RegisterAll(r *Runner) {
	r.Register("salary", schedule.DailyAt(19, 0), s.runSalaries)
	r.Register("staff notify sweep", schedule.DailyAt(9, 0), s.runNotifySweep)

	r.Register("daily backup", schedule.DailyAt(0, 0), s.runBackup(cadenceDaily))
	r.Register("weekly backup", schedule.WeeklyOn(time.Friday, 0, 10), s.runBackup(cadenceWeekly))
	r.Register("monthly backup", schedule.MonthlyOn(1, 0, 20), s.runBackup(cadenceMonthly))
	r.Register("yearly backup", schedule.YearlyOn(time.January, 1, 0, 30), s.runBackup(cadenceYearly))

	// Cleanup trails each backup cadence by one hour.
	r.Register("daily backup cleanup", schedule.DailyAt(1, 0), s.runBackupCleanup(cadenceDaily))
	r.Register("weekly backup cleanup", schedule.WeeklyOn(time.Friday, 1, 10), s.runBackupCleanup(cadenceWeekly))
	r.Register("monthly backup cleanup", schedule.MonthlyOn(1, 1, 20), s.runBackupCleanup(cadenceMonthly))
	r.Register("yearly backup cleanup", schedule.YearlyOn(time.January, 1, 1, 30), s.runBackupCleanup(cadenceYearly))

	r.Register("fx fetch", schedule.HourlyAt(48), s.runFxFetch)
}
