package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recipevault/recipevault/internal/api"
	"github.com/recipevault/recipevault/internal/config"
	"github.com/recipevault/recipevault/internal/env"
	"github.com/recipevault/recipevault/internal/log"
	"github.com/recipevault/recipevault/internal/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	const setupTime = 30 * time.Second
	setupCtx, cancel := context.WithTimeout(ctx, setupTime)
	defer cancel()

	logger := log.New(nil)

	conf, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := setup.Database(setupCtx, conf)
	if err != nil {
		logger.Error("failed to setup database", slog.Any("error", err))
		os.Exit(1)
	}

	fs, err := setup.FileStore(setupCtx, conf)
	if err != nil {
		logger.Error("failed to setup file store", slog.Any("error", err))
		os.Exit(1)
	}

	environment := env.New(map[string]string{
		"APP_SECRET":         string(*conf.AppSecret.Value),
		"APP_SECRET_VERSION": conf.AppSecret.Version,
		"ENV":                conf.Env,
		"HOST_ORIGIN":        conf.HostOrigin,
	})
	environment.Logger = logger
	environment.Database = db
	environment.FileStore = fs

	if err := api.Start(environment, conf.Port); err != nil {
		logger.Error("API failed", slog.Any("error", err))
		os.Exit(1)
	}
}
