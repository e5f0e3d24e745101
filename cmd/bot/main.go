package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"github.com/purechat/purechat-server/config"
	"github.com/purechat/purechat-server/filter"
	"github.com/purechat/purechat-server/moderation"
	moderationcache "github.com/purechat/purechat-server/moderation/cache"
	moderationmemory "github.com/purechat/purechat-server/moderation/memory"
	moderationpostgres "github.com/purechat/purechat-server/moderation/postgres"
	"github.com/purechat/purechat-server/scorer/huggingface"
	"github.com/purechat/purechat-server/telegram"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadBot()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	var client *huggingface.Client
	if cfg.HFBaseURL != "" {
		client = huggingface.NewClient(cfg.HFAPIToken, cfg.HFBaseURL)
	} else {
		client = huggingface.NewClient(cfg.HFAPIToken)
	}
	if cfg.TextModel != "" {
		client.TextModel = cfg.TextModel
	}

	f, err := filter.NewFilter(
		logger,
		client,
		client,
		filter.UnsafeLabelTable{},
		filter.WithThreshold(cfg.Threshold),
	)
	if err != nil {
		logger.Fatal("failed to create filter", zap.Error(err))
	}

	strikes, events, err := openStores(logger, cfg)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}

	moderator := moderation.NewModerator(logger, f, strikes, events, cfg.MaxStrikes)
	bot := telegram.NewBot(logger, telegram.NewClient(cfg.BotToken), moderator)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot terminated", zap.Error(err))
	}

	logger.Info("bot exited")
}

func openStores(logger *zap.Logger, cfg *config.Bot) (moderation.StrikeStore, moderation.EventStore, error) {
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return nil, nil, err
		}

		if err := moderationpostgres.Setup(db); err != nil {
			return nil, nil, err
		}

		store := moderationpostgres.NewInPostgres(db)
		logger.Info("strikes stored in postgres")
		return store, store, nil
	}

	events := moderationmemory.NewInMemory()

	if cfg.StrikeTTL > 0 {
		logger.Info("strikes stored in memory with expiry", zap.Duration("ttl", cfg.StrikeTTL))
		return moderationcache.NewInCache(cfg.StrikeTTL), events, nil
	}

	logger.Info("strikes stored in memory")
	return events, events, nil
}
