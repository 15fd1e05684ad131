package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/paw-haven/paw_haven/internal/config"
	"github.com/paw-haven/paw_haven/internal/infra"
	"github.com/paw-haven/paw_haven/internal/logging"
	"github.com/paw-haven/paw_haven/internal/routes"
)

// Runs a single pass over due subscriptions and exits. Scheduling is left to
// an external timer (cron, systemd timer, k8s CronJob).
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, "scheduler")

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		logger.Warn("DATABASE_URL not set, charging against in-memory storage")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	services := routes.BuildServices(routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger})

	report, err := services.Scheduler().RunDueCharges(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("run due charges", "error", err)
		os.Exit(1)
	}

	logger.Info("scheduler pass complete",
		"due", report.Due,
		"charged", report.Charged,
		"paused", report.Paused,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
}
