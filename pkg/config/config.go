package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Source         SourceConfig         `mapstructure:"source"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Queue          QueueConfig          `mapstructure:"queue"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	Telegram       TelegramConfig       `mapstructure:"telegram"`
	AI             AIConfig             `mapstructure:"ai"`
	Tariffs        TariffsConfig        `mapstructure:"tariffs"`
	Goals          GoalsConfig          `mapstructure:"goals"`
	Stripe         StripeConfig         `mapstructure:"stripe"`
	Email          EmailConfig          `mapstructure:"email"`
	Vault          VaultConfig          `mapstructure:"vault"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Jobs           JobsConfig           `mapstructure:"jobs"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

// SourceConfig selects where period metrics come from.
// Driver is one of: postgres, journal, synthetic.
type SourceConfig struct {
	Driver      string        `mapstructure:"driver"`
	JournalUnit string        `mapstructure:"journal_unit"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// QueueConfig selects the event bus. Driver is nats or rabbitmq.
type QueueConfig struct {
	Driver        string        `mapstructure:"driver"`
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret              string        `mapstructure:"secret"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration"`
	Issuer              string        `mapstructure:"issuer"`
}

type TelegramConfig struct {
	BotToken    string        `mapstructure:"bot_token"`
	AdminChatID int64         `mapstructure:"admin_chat_id"`
	APIBaseURL  string        `mapstructure:"api_base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TariffsConfig prices LLM token usage in USD per million tokens.
// Models keys are model identifiers as reported in invocation records.
type TariffsConfig struct {
	Models  map[string]ModelTariffConfig `mapstructure:"models"`
	Default ModelTariffConfig            `mapstructure:"default"`
}

type ModelTariffConfig struct {
	InputPerMTok  float64 `mapstructure:"input"`
	OutputPerMTok float64 `mapstructure:"output"`
}

// GoalsConfig holds the business targets alert rules compare against.
type GoalsConfig struct {
	MonthlyRevenue    float64 `mapstructure:"monthly_revenue"`
	WeeklyRevenue     float64 `mapstructure:"weekly_revenue"`
	DailyRevenue      float64 `mapstructure:"daily_revenue"`
	AvgCheckTarget    float64 `mapstructure:"avg_check_target"`
	AvgCheckWarnGap   float64 `mapstructure:"avg_check_warn_gap"`
	ErrorRateMax      float64 `mapstructure:"error_rate_max"`
	OCRAdoptionTarget float64 `mapstructure:"ocr_adoption_target"`
	AIAdoptionTarget  float64 `mapstructure:"ai_adoption_target"`
	ActivationTarget  float64 `mapstructure:"activation_target"`
	RetentionTarget   float64 `mapstructure:"retention_target"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	To       string `mapstructure:"to"`
}

type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	Path    string `mapstructure:"path"`
}

type OpenTelemetryConfig struct {
	Enabled     bool         `mapstructure:"enabled"`
	Jaeger      JaegerConfig `mapstructure:"jaeger"`
	ServiceName string       `mapstructure:"service_name"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CacheConfig struct {
	ReportTTL       time.Duration `mapstructure:"report_ttl"`
	MetricsTTL      time.Duration `mapstructure:"metrics_ttl"`
	ReportLockTTL   time.Duration `mapstructure:"report_lock_ttl"`
	CustomerViewTTL time.Duration `mapstructure:"customer_view_ttl"`
}

type JobsConfig struct {
	DailyReport   JobSchedule `mapstructure:"daily_report"`
	WeeklyReport  JobSchedule `mapstructure:"weekly_report"`
	MonthlyReport JobSchedule `mapstructure:"monthly_report"`
	ValueRefresh  JobSchedule `mapstructure:"value_refresh"`
	AlertSweep    JobSchedule `mapstructure:"alert_sweep"`
}

type JobSchedule struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}
