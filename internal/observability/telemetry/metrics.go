package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	ReportsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medicod_reports_generated_total",
		Help: "Reports generated, by period label and outcome",
	}, []string{"period", "status"})

	ReportGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medicod_report_generation_seconds",
		Help:    "End-to-end report generation latency",
		Buckets: prometheus.DefBuckets,
	})

	AlertsRaisedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medicod_alerts_raised_total",
		Help: "Alert findings raised, by severity",
	}, []string{"severity"})

	CustomerValueRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medicod_customer_value_refreshes_total",
		Help: "Per-customer lifetime value recomputations",
	})

	NarrativeTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medicod_narrative_tokens_total",
		Help: "LLM tokens consumed by narrative generation",
	}, []string{"model", "kind"})

	// Infrastructure metrics
	MetricQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medicod_metric_queries_total",
		Help: "Metric source queries, by section and outcome",
	}, []string{"section", "status"})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medicod_database_latency_seconds",
		Help:    "Database query latency",
		Buckets: prometheus.DefBuckets,
	})

	TelegramSendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medicod_telegram_sends_total",
		Help: "Telegram message deliveries, by outcome",
	}, []string{"status"})
)
