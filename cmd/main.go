package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"book_catalog_tgbot/config"
	redisClient "book_catalog_tgbot/data/redis"
	"book_catalog_tgbot/data/session"
	"book_catalog_tgbot/internal/aggregator"
	"book_catalog_tgbot/internal/fetcher"
	"book_catalog_tgbot/internal/service/catalogService"
	"book_catalog_tgbot/internal/tgbot"
	"book_catalog_tgbot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var chatSession telegram.Session
	if cfg.Redis.Host != "" {
		rdb := redisClient.MustInitRedis(ctx, cfg)
		defer rdb.Close()

		chatSession = session.NewRedisSession(rdb, cfg.SessionExpiration)
	} else {
		slog.Info("REDIS_HOST is empty, chat sessions are kept in memory")
		chatSession = session.NewMemorySession(cfg.SessionExpiration)
	}

	volumesFetcher := fetcher.NewGoogleBooksFetcher(cfg)

	catalog := catalogService.New(cfg, volumesFetcher, aggregator.ByAuthor{})

	tgController := telegram.NewController(cfg, catalog, chatSession)

	tgBot := tgbot.New(cfg, tgController)

	tgBot.Start()
	defer tgBot.Stop()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go tgController.RunSweeper(sweepCtx, cfg.SessionExpiration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
