package main

import (
	"context"
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pardaaf/backoffice/pkg/blob"
	"github.com/pardaaf/backoffice/pkg/botstate"
	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/config"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/faultlog"
	"github.com/pardaaf/backoffice/pkg/httpserver"
	"github.com/pardaaf/backoffice/pkg/imaging"
	"github.com/pardaaf/backoffice/pkg/logger"
	"github.com/pardaaf/backoffice/pkg/mailer"
	"github.com/pardaaf/backoffice/pkg/printqueue"
	"github.com/pardaaf/backoffice/pkg/redisconn"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
	"github.com/pardaaf/backoffice/pkg/token"
	"github.com/pardaaf/backoffice/svc/bot"
	"github.com/pardaaf/backoffice/svc/gateway"
)

type appConfig struct {
	DB      dbpool.Config
	Redis   redisconn.Config
	Token   token.Config
	Blob    blob.Config
	SMTP    mailer.Config
	Faults  faultlog.Config
	Bot     bot.Config
	Gateway gateway.Config
	Server  httpserver.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithService("pardaaf-server"),
		logger.WithContextExtractors(tenantctx.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	registry := dbpool.NewRegistry(cfg.DB, log)
	defer registry.CloseAll()

	if err := catalog.Migrate(ctx, registry, log); err != nil {
		return err
	}
	directory := catalog.New(registry)

	redisClient, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	tokens, err := token.New(cfg.Token)
	if err != nil {
		return err
	}

	blobs, err := blob.New(ctx, cfg.Blob)
	if err != nil {
		return err
	}

	mail, err := mailer.New(cfg.SMTP, log)
	if err != nil {
		return err
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return err
	}
	botSvc := bot.New(botAPI, directory, registry, botstate.New(redisClient), log)

	svc := gateway.New(cfg.Gateway, gateway.Deps{
		Registry: registry,
		Catalog:  directory,
		Tokens:   tokens,
		Queue:    printqueue.New(redisClient),
		Blobs:    blobs,
		Images:   imaging.NewTranscoder(0),
		Notifier: botSvc,
		Bot:      botSvc,
		Mail:     mail,
		Faults:   faultlog.New(registry, mail, cfg.Faults, log),
		Logger:   log,
	})

	return httpserver.New(cfg.Server, log).Run(ctx, svc.Handler())
}
