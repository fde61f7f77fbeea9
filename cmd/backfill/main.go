package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/cache"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/storage/postgres"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/customer"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

// backfill recomputes the lifetime value record for every paying customer.
// Run after schema changes to customer_lifetime_value or before the first
// deployment against an existing payments table.
func main() {
	timeout := flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var refreshCache ports.Cache
	if redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger); err != nil {
		logger.Warn("Redis unavailable, using in-memory locks", zap.Error(err))
		refreshCache = cache.NewLocalCache()
	} else {
		refreshCache = redisCache
	}
	defer refreshCache.Close()

	repo := postgres.NewCustomerValueRepository(db, logger)
	service := customer.NewService(repo, refreshCache, logger)

	ids, err := repo.PayingUserIDs(ctx)
	if err != nil {
		logger.Fatal("Failed to list paying customers", zap.Error(err))
	}
	logger.Info("Backfilling customer lifetime values", zap.Int("customers", len(ids)))

	bar := progressbar.Default(int64(len(ids)), "backfill")
	refreshed, failed := 0, 0
	for _, id := range ids {
		if ctx.Err() != nil {
			logger.Fatal("Backfill timed out", zap.Int("refreshed", refreshed))
		}
		rec, err := service.Refresh(ctx, id)
		if err != nil {
			failed++
			logger.Error("Refresh failed", zap.String("user_id", id), zap.Error(err))
		} else if rec != nil {
			refreshed++
		}
		bar.Add(1)
	}

	logger.Info("Backfill completed",
		zap.Int("refreshed", refreshed),
		zap.Int("failed", failed),
		zap.Int("total", len(ids)),
	)
}
