package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/ai/glm"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/cache"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/external/payment"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/http/fiber/handlers"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/http/fiber/middleware"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/queue"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/storage/journal"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/storage/postgres"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/storage/synthetic"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/telegram"
	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/vault"
	"github.com/ainishanov/medicod-analytics-bot/internal/observability/telemetry"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/alert"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/analytics"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/customer"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/health"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/report"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting Medicod Analytics Bot",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Resolve Secrets from Vault (optional)
	if cfg.Vault.Enabled {
		resolveVaultSecrets(cfg, logger)
	}

	// 4. Initialize Tracer
	if cfg.OpenTelemetry.Enabled {
		tp, err := telemetry.InitTracer(cfg.OpenTelemetry)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize Metric Source and Database
	var (
		source    ports.MetricSource
		valueRepo ports.CustomerValueRepository
		recorder  ports.PaymentRecorder
	)
	switch cfg.Source.Driver {
	case "postgres":
		db, err := postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer postgres.Close(db)
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		source = postgres.NewMetricSource(db, logger)
		valueRepo = postgres.NewCustomerValueRepository(db, logger)
		recorder = postgres.NewPaymentRepository(db, logger)
	case "journal":
		source = journal.NewSource(cfg.Source.JournalUnit, logger)
	case "synthetic":
		source = synthetic.NewSource(logger)
	default:
		logger.Fatal("Unknown source driver", zap.String("driver", cfg.Source.Driver))
	}

	// 6. Initialize Cache (Redis with in-process fallback)
	var reportCache ports.Cache
	if redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger); err != nil {
		logger.Warn("Redis unavailable, using in-process cache", zap.Error(err))
		reportCache = cache.NewLocalCache()
	} else {
		reportCache = redisCache
	}
	defer reportCache.Close()

	// 7. Initialize Message Queue
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

	// 8. Initialize Services
	analyticsService := analytics.NewService(source, cfg.Tariffs, logger)
	alertService := alert.NewService(cfg.Goals, logger)
	healthService := health.NewService(cfg.Goals, logger)
	narrativeClient := glm.NewClient(cfg.AI, logger)
	telegramClient := telegram.NewClient(cfg.Telegram, logger)
	reportService := report.NewService(report.Deps{
		Analytics: analyticsService,
		Alerts:    alertService,
		Health:    healthService,
		Narrative: narrativeClient,
		Sender:    telegramClient,
		Cache:     reportCache,
		Queue:     mq,
	}, cfg, logger)

	var customerService *customer.Service
	if valueRepo != nil {
		customerService = customer.NewService(valueRepo, reportCache, logger)
	}

	// 9. Initialize HTTP Server
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if !source.Available(c.Context()) {
			return c.Status(503).SendString("Metric source not ready")
		}
		if err := reportCache.Ping(c.Context()); err != nil {
			return c.Status(503).SendString("Cache not ready")
		}
		return c.SendString("Ready")
	})

	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// Webhook endpoint stays public: Stripe authenticates via signature.
	if recorder != nil && cfg.Stripe.WebhookSecret != "" {
		stripeWebhook := payment.NewStripeWebhook(cfg.Stripe.WebhookSecret, recorder, logger)
		webhookHandler := handlers.NewWebhookHandler(stripeWebhook, logger)
		app.Post("/webhooks/stripe", webhookHandler.Stripe)
	}

	v1 := app.Group("/api/v1", middleware.AuthRequired(cfg.JWT.Secret))

	reportHandler := handlers.NewReportHandler(reportService, logger)
	v1.Get("/reports/:period", reportHandler.Get)
	v1.Post("/reports/:period/deliver", reportHandler.Deliver)
	v1.Post("/ask", reportHandler.Ask)

	if customerService != nil {
		customerHandler := handlers.NewCustomerHandler(customerService, logger)
		v1.Get("/customers", customerHandler.List)
		v1.Get("/customers/overview", customerHandler.Overview)
		v1.Post("/customers/:id/refresh", customerHandler.Refresh)
		v1.Post("/customers/refresh", customerHandler.RefreshAll)
	}

	// 10. Start Background Workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go startBackgroundWorkers(ctx, cfg, mq, customerService, logger)

	// 11. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// resolveVaultSecrets overrides empty credential fields with values from the
// configured KV path. Config/env values win when already set.
func resolveVaultSecrets(cfg *config.Config, logger *zap.Logger) {
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
	if err != nil {
		logger.Fatal("Failed to connect to Vault", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	secrets := []struct {
		key  string
		dest *string
	}{
		{"telegram_bot_token", &cfg.Telegram.BotToken},
		{"ai_api_key", &cfg.AI.APIKey},
		{"stripe_webhook_secret", &cfg.Stripe.WebhookSecret},
		{"jwt_secret", &cfg.JWT.Secret},
		{"sendgrid_api_key", &cfg.Email.APIKey},
	}
	for _, s := range secrets {
		if *s.dest != "" {
			continue
		}
		value, err := sm.GetSecret(ctx, cfg.Vault.Path, s.key)
		if err != nil {
			logger.Warn("Secret not found in Vault", zap.String("key", s.key), zap.Error(err))
			continue
		}
		*s.dest = value
	}
}

// startBackgroundWorkers runs the in-process jobs: event logging for the
// report subjects and the periodic customer value refresh. Report delivery
// itself is driven externally (systemd timers running cmd/sendreport).
func startBackgroundWorkers(ctx context.Context, cfg *config.Config, mq ports.MessageQueue, customers *customer.Service, logger *zap.Logger) {
	logger.Info("Starting background workers")

	if err := mq.Subscribe(ctx, queue.SubjectAlertsCritical, func(data []byte) {
		logger.Warn("Critical alert event", zap.ByteString("payload", data))
	}); err != nil {
		logger.Error("Failed to subscribe to alert events", zap.Error(err))
	}

	if customers == nil || !cfg.Jobs.ValueRefresh.Enabled {
		return
	}
	interval, err := time.ParseDuration(cfg.Jobs.ValueRefresh.Schedule)
	if err != nil || interval <= 0 {
		logger.Error("Invalid value_refresh schedule", zap.String("schedule", cfg.Jobs.ValueRefresh.Schedule))
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := customers.RefreshAll(ctx)
			if err != nil {
				logger.Error("Scheduled customer value refresh failed", zap.Error(err))
				continue
			}
			logger.Info("Scheduled customer value refresh completed", zap.Int("refreshed", n))
			payload, _ := json.Marshal(map[string]interface{}{
				"refreshed": n,
				"at":        time.Now().UTC().Format(time.RFC3339),
			})
			if err := mq.Publish(ctx, queue.SubjectValueRefreshed, payload); err != nil {
				logger.Error("Failed to publish refresh event", zap.Error(err))
			}
		}
	}
}
