package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/ai/glm"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/cache"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/queue"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/storage/journal"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/storage/postgres"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/storage/synthetic"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/telegram"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/alert"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/analytics"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/customer"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/email"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/health"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/report"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

// sendreport generates one report and delivers it, then exits. Meant to run
// from a systemd timer or cron entry; scheduling lives outside the binary.
func main() {
	period := flag.String("period", report.PeriodWeek, "report period: today, yesterday, week, month")
	withEmail := flag.Bool("email", false, "also send the report by email")
	refreshLTV := flag.Bool("refresh-ltv", false, "refresh customer lifetime values first")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var (
		source    ports.MetricSource
		valueRepo ports.CustomerValueRepository
	)
	switch cfg.Source.Driver {
	case "postgres":
		db, err := postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer postgres.Close(db)
		source = postgres.NewMetricSource(db, logger)
		valueRepo = postgres.NewCustomerValueRepository(db, logger)
	case "journal":
		source = journal.NewSource(cfg.Source.JournalUnit, logger)
	case "synthetic":
		source = synthetic.NewSource(logger)
	default:
		logger.Fatal("Unknown source driver", zap.String("driver", cfg.Source.Driver))
	}

	var reportCache ports.Cache
	if redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger); err != nil {
		logger.Warn("Redis unavailable, using in-process cache", zap.Error(err))
		reportCache = cache.NewLocalCache()
	} else {
		reportCache = redisCache
	}
	defer reportCache.Close()

	var mq ports.MessageQueue
	switch cfg.Queue.Driver {
	case "rabbitmq":
		mq, err = queue.NewRabbitMQQueue(cfg.Queue.URL, logger)
	default:
		mq, err = queue.NewNATSQueue(cfg.Queue.URL, logger)
	}
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer mq.Close()

	if *refreshLTV && valueRepo != nil {
		n, err := customer.NewService(valueRepo, reportCache, logger).RefreshAll(ctx)
		if err != nil {
			logger.Error("Customer value refresh failed", zap.Error(err))
		} else {
			logger.Info("Customer values refreshed", zap.Int("count", n))
		}
	}

	reportService := report.NewService(report.Deps{
		Analytics: analytics.NewService(source, cfg.Tariffs, logger),
		Alerts:    alert.NewService(cfg.Goals, logger),
		Health:    health.NewService(cfg.Goals, logger),
		Narrative: glm.NewClient(cfg.AI, logger),
		Sender:    telegram.NewClient(cfg.Telegram, logger),
		Cache:     reportCache,
		Queue:     mq,
	}, cfg, logger)

	rep, err := reportService.Generate(ctx, *period, true)
	if err != nil {
		logger.Fatal("Report generation failed", zap.String("period", *period), zap.Error(err))
	}
	if err := reportService.Deliver(ctx, rep); err != nil {
		logger.Fatal("Report delivery failed", zap.String("period", *period), zap.Error(err))
	}

	if *withEmail {
		if err := email.NewService(cfg.Email, logger).SendReport(ctx, rep); err != nil {
			logger.Error("Report email failed", zap.Error(err))
		}
	}

	logger.Info("Report sent",
		zap.String("period", *period),
		zap.String("report_id", rep.ID),
		zap.Int("critical_alerts", len(rep.Alerts.Critical)),
	)
}
