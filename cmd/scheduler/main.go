package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pardaaf/backoffice/pkg/botstate"
	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/config"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/logger"
	"github.com/pardaaf/backoffice/pkg/mailer"
	"github.com/pardaaf/backoffice/pkg/redisconn"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
	"github.com/pardaaf/backoffice/svc/bot"
	"github.com/pardaaf/backoffice/svc/jobs"
)

type appConfig struct {
	DB     dbpool.Config
	Redis  redisconn.Config
	SMTP   mailer.Config
	Bot    bot.Config
	Backup jobs.BackupConfig
	Fx     jobs.FxConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithService("pardaaf-scheduler"),
		logger.WithContextExtractors(tenantctx.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scheduler exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	registry := dbpool.NewRegistry(cfg.DB, log)
	defer registry.CloseAll()

	directory := catalog.New(registry)

	redisClient, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	mail, err := mailer.New(cfg.SMTP, log)
	if err != nil {
		return err
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return err
	}
	botSvc := bot.New(botAPI, directory, registry, botstate.New(redisClient), log)

	runner, err := jobs.NewRunner(log)
	if err != nil {
		return err
	}

	jobs.New(jobs.Deps{
		Registry: registry,
		Catalog:  directory,
		Mail:     mail,
		Notifier: botSvc,
		Chat:     botAPI,
		Backup:   cfg.Backup,
		Fx:       cfg.Fx,
		DBConfig: cfg.DB,
		Logger:   log,
	}).RegisterAll(runner)

	return runner.Run(ctx)
}
