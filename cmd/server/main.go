package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/purechat/purechat-server/archive"
	archiveaws "github.com/purechat/purechat-server/archive/aws"
	"github.com/purechat/purechat-server/config"
	"github.com/purechat/purechat-server/filter"
	"github.com/purechat/purechat-server/rest"
	"github.com/purechat/purechat-server/scorer/huggingface"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadServer()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
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
	if cfg.ImageModel != "" {
		client.ImageModel = cfg.ImageModel
	}

	f, err := filter.NewFilter(
		logger,
		client,
		client,
		filter.UnsafeLabelTable{},
		filter.WithThreshold(cfg.Threshold),
		filter.WithMode(cfg.Mode),
	)
	if err != nil {
		logger.Fatal("failed to create filter", zap.Error(err))
	}

	var quarantine archive.Store
	if cfg.ArchiveBucket != "" {
		quarantine = archiveaws.NewInS3(archiveaws.Config{
			Endpoint:  cfg.ArchiveEndpoint,
			Region:    cfg.ArchiveRegion,
			Bucket:    cfg.ArchiveBucket,
			AccessKey: cfg.ArchiveAccessKey,
			SecretKey: cfg.ArchiveSecretKey,
		})
		logger.Info("archiving flagged images to s3", zap.String("bucket", cfg.ArchiveBucket))
	} else {
		logger.Info("no archive bucket configured, flagged images are not archived")
	}

	server := rest.NewServer(logger, f, quarantine)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Run(ctx, cfg.ListenAddr); err != nil {
		logger.Fatal("server terminated", zap.Error(err))
	}

	logger.Info("server exited")
}
