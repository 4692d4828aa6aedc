// Package main runs the background maintenance worker (backups and
// retention cleanup).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/circuit-breakers/teamhub/config"
	"github.com/circuit-breakers/teamhub/internal/admin"
	"github.com/circuit-breakers/teamhub/internal/messages"
	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/internal/worker"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/queue"
	"github.com/circuit-breakers/teamhub/pkg/redis"
	"github.com/circuit-breakers/teamhub/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Redis.Addr == "" {
		logger.Fatal("worker requires REDIS_ADDR")
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Bucket != "" {
		s3Client, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			Bucket:               cfg.AWS.Bucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	settingsRepo := admin.NewSettingsRepository(jsonstore.NewDocument[models.Settings](cfg.Data.SettingsFile(), logger), logger)
	messageRepo := messages.NewRepository(jsonstore.NewCollection[models.Message](cfg.Data.MessagesFile(), logger), logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewProcessor(jobQueue, cfg.Data, cfg.Backup, settingsRepo, messageRepo, s3Client, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
