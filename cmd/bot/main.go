package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/semaphore"

	"github.com/holmlund/replicate-ideogram-pipeline/internal/config"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/handlers"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/httpclient"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/imagegen"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/replicate"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/session"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/telegram"
)

const userAgent = "replicate-ideogram-pipeline/1.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		UserAgent:  userAgent,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	rep := replicate.New(replicate.Options{
		APIToken:     cfg.ReplicateAPIToken,
		BaseURL:      cfg.ReplicateBaseURL,
		HTTPClient:   httpClient,
		Logger:       logger,
		PollInterval: cfg.PollInterval,
	})

	pipe := imagegen.New(imagegen.Options{
		Runner: rep,
		Logger: logger,
	})

	history := session.NewStore(session.Options{
		MaxGenerations: cfg.MaxHistory,
	})

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Pipeline: pipe,
		History:  history,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started", "username", tg.Username())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	sem := semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}

			go func(update telegram.Update) {
				defer sem.Release(1)

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
