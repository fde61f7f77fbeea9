package ports

import (
	"context"
	"time"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

// MetricSource provides raw per-section aggregates for a reporting window.
// Implementations: postgres (production), journal (log scraping fallback),
// synthetic (deterministic demo data).
type MetricSource interface {
	// Available reports whether the source can currently serve queries.
	Available(ctx context.Context) bool
	PaymentsByDay(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error)
	ErrorCounts(ctx context.Context, w domain.Window) (domain.ErrorSummary, error)
	FeatureCounts(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error)
	FunnelCounts(ctx context.Context, w domain.Window) (domain.FunnelCounts, error)
	AIInvocations(ctx context.Context, w domain.Window) ([]domain.AIInvocationRow, error)
	BehaviorStats(ctx context.Context, w domain.Window) (domain.BehaviorSummary, error)
}

// CustomerValueRepository persists and queries per-customer lifetime value
// records and their aggregates.
type CustomerValueRepository interface {
	UserPaymentStats(ctx context.Context, userID string) (*domain.UserPaymentStats, error)
	UserSessionStats(ctx context.Context, userID string) (*domain.UserSessionStats, error)
	UserRevenueSince(ctx context.Context, userID string, since time.Time) (float64, error)
	Upsert(ctx context.Context, rec *domain.CustomerLifetimeRecord) error
	PayingUserIDs(ctx context.Context) ([]string, error)
	Records(ctx context.Context, filter domain.QueryFilter) ([]domain.CustomerLifetimeRecord, error)
	ChurnStats(ctx context.Context) (*domain.ChurnStats, error)
	ChurnByCohort(ctx context.Context) ([]domain.CohortChurn, error)
	CohortLTV(ctx context.Context) ([]domain.CohortLTV, error)
	AOVTrend(ctx context.Context, months int) ([]domain.AOVPoint, error)
	TopCustomers(ctx context.Context, limit int) ([]domain.CustomerLifetimeRecord, error)
}

// PaymentRecorder ingests payment events from external providers.
type PaymentRecorder interface {
	SavePayment(ctx context.Context, p *domain.Payment) error
	GetPaymentByProviderID(ctx context.Context, providerID string) (*domain.Payment, error)
	SaveError(ctx context.Context, e *domain.ErrorEvent) error
}
