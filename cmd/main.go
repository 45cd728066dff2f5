package main

import (
	"flag"
	"os"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"mercariBot/internal/challenge"
	"mercariBot/internal/config"
	"mercariBot/internal/history"
	"mercariBot/internal/logger"
	"mercariBot/internal/mercari"
	"mercariBot/internal/migrations"
	"mercariBot/internal/notify"
	"mercariBot/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("c", "config.yaml", "путь к файлу конфигурации")
	notifyLog := flag.Bool("l", false, "отправить лог запуска в info-канал")
	debug := flag.Bool("d", false, "отладочный режим: цены не меняются")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, capture, err := logger.NewWithCapture(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("Запуск")

	var repo *history.Repository
	if cfg.Database != nil {
		if err := migrations.Run(cfg, log); err != nil {
			log.Fatal("Ошибка миграций", zap.Error(err))
		}

		db, err := history.New(cfg, log)
		if err != nil {
			log.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close(log)

		repo = history.NewRepository(db.DB)
	}

	notifier := notify.New(cfg, log)

	var resolver challenge.Resolver
	if cfg.Slack != nil && cfg.Slack.Captcha != nil {
		client := slack.New(cfg.Slack.BotToken)
		resolver = challenge.NewSlackResolver(client, cfg.Slack.Captcha.Channel.ID, log)
	} else {
		resolver = challenge.NewTerminalResolver(os.Stdin, os.Stdout, log)
	}

	r := runner.New(cfg, log, notifier, resolver, repo, mercari.Mode{Debug: *debug})
	failed := r.RunAll()

	if *notifyLog {
		notifier.Info("Mercari price change", capture.String())
	}

	log.Info("Завершено", zap.Int("failed", failed))
	return failed
}
