// cmd/historian/main.go drains the lobby event queue into Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/imposter/internal/cache"
	"github.com/jason-s-yu/imposter/internal/config"
	"github.com/jason-s-yu/imposter/internal/database"
	"github.com/jason-s-yu/imposter/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.Postgres.Disabled || cfg.Redis.Disabled {
		logrus.Fatal("the historian needs both Postgres and Redis")
	}

	if err := database.ConnectDB(cfg.Postgres); err != nil {
		logrus.Fatal(err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx); err != nil {
		logrus.Fatal(err)
	}
	if err := cache.ConnectRedis(cfg.Redis.Addr, cfg.Redis.DB); err != nil {
		logrus.Fatal(err)
	}
	defer cache.Rdb.Close()

	svc := historian.NewService(
		historian.RedisQueue{Client: cache.Rdb, Name: cfg.HistorianQueue},
		database.Store{},
		cfg.HistorianBatchSize,
		cfg.HistorianFlushDelay,
	)
	if err := svc.Run(ctx); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("Historian shutdown complete.")
}

