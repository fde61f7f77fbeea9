package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("queue.url", "QUEUE_URL", "APP_QUEUE_URL")
	viper.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	viper.BindEnv("telegram.admin_chat_id", "TELEGRAM_ADMIN_CHAT_ID")
	viper.BindEnv("ai.api_key", "AI_API_KEY", "GLM_API_KEY")
	viper.BindEnv("stripe.secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("stripe.webhook_secret", "STRIPE_WEBHOOK_SECRET")
	viper.BindEnv("email.api_key", "SENDGRID_API_KEY")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "medicod-analytics-bot")
	viper.SetDefault("app.environment", "development")

	viper.SetDefault("source.driver", "postgres")
	viper.SetDefault("source.timeout", "15s")

	viper.SetDefault("queue.driver", "nats")

	viper.SetDefault("ai.base_url", "https://open.bigmodel.cn/api/paas/v4")
	viper.SetDefault("ai.model", "glm-4.5")
	viper.SetDefault("ai.max_tokens", 2000)
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.timeout", "60s")

	viper.SetDefault("tariffs.default.input", 0.6)
	viper.SetDefault("tariffs.default.output", 2.2)

	viper.SetDefault("goals.monthly_revenue", 30000)
	viper.SetDefault("goals.weekly_revenue", 7500)
	viper.SetDefault("goals.daily_revenue", 1000)
	viper.SetDefault("goals.avg_check_target", 100)
	viper.SetDefault("goals.avg_check_warn_gap", 30)
	viper.SetDefault("goals.error_rate_max", 5)
	viper.SetDefault("goals.ocr_adoption_target", 20)
	viper.SetDefault("goals.ai_adoption_target", 30)
	viper.SetDefault("goals.activation_target", 10)
	viper.SetDefault("goals.retention_target", 15)

	viper.SetDefault("cache.report_ttl", "1h")
	viper.SetDefault("cache.metrics_ttl", "10m")
	viper.SetDefault("cache.report_lock_ttl", "2m")
	viper.SetDefault("cache.customer_view_ttl", "30m")

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", "60s")
	viper.SetDefault("circuit_breaker.timeout", "120s")
	viper.SetDefault("circuit_breaker.failure_threshold", 0.6)
}

// Tariff resolves the tariff for a model, falling back to the default when the
// model is unknown. The second result reports whether the model was known.
func (t TariffsConfig) Tariff(model string) (ModelTariffConfig, bool) {
	if mt, ok := t.Models[model]; ok {
		return mt, true
	}
	return t.Default, false
}
