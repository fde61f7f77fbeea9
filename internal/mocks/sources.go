package mocks

import (
	"context"
	"time"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

// MockMetricSource is a mock implementation of MetricSource
type MockMetricSource struct {
	AvailableFunc     func(ctx context.Context) bool
	PaymentsByDayFunc func(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error)
	ErrorCountsFunc   func(ctx context.Context, w domain.Window) (domain.ErrorSummary, error)
	FeatureCountsFunc func(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error)
	FunnelCountsFunc  func(ctx context.Context, w domain.Window) (domain.FunnelCounts, error)
	AIInvocationsFunc func(ctx context.Context, w domain.Window) ([]domain.AIInvocationRow, error)
	BehaviorStatsFunc func(ctx context.Context, w domain.Window) (domain.BehaviorSummary, error)
}

func (m *MockMetricSource) Available(ctx context.Context) bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc(ctx)
	}
	return true
}

func (m *MockMetricSource) PaymentsByDay(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error) {
	if m.PaymentsByDayFunc != nil {
		return m.PaymentsByDayFunc(ctx, w)
	}
	return nil, nil
}

func (m *MockMetricSource) ErrorCounts(ctx context.Context, w domain.Window) (domain.ErrorSummary, error) {
	if m.ErrorCountsFunc != nil {
		return m.ErrorCountsFunc(ctx, w)
	}
	return domain.ErrorSummary{}, nil
}

func (m *MockMetricSource) FeatureCounts(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error) {
	if m.FeatureCountsFunc != nil {
		return m.FeatureCountsFunc(ctx, w)
	}
	return nil, nil
}

func (m *MockMetricSource) FunnelCounts(ctx context.Context, w domain.Window) (domain.FunnelCounts, error) {
	if m.FunnelCountsFunc != nil {
		return m.FunnelCountsFunc(ctx, w)
	}
	return domain.FunnelCounts{}, nil
}

func (m *MockMetricSource) AIInvocations(ctx context.Context, w domain.Window) ([]domain.AIInvocationRow, error) {
	if m.AIInvocationsFunc != nil {
		return m.AIInvocationsFunc(ctx, w)
	}
	return nil, nil
}

func (m *MockMetricSource) BehaviorStats(ctx context.Context, w domain.Window) (domain.BehaviorSummary, error) {
	if m.BehaviorStatsFunc != nil {
		return m.BehaviorStatsFunc(ctx, w)
	}
	return domain.BehaviorSummary{}, nil
}

// MockCustomerValueRepository is a mock implementation of CustomerValueRepository
type MockCustomerValueRepository struct {
	UserPaymentStatsFunc func(ctx context.Context, userID string) (*domain.UserPaymentStats, error)
	UserSessionStatsFunc func(ctx context.Context, userID string) (*domain.UserSessionStats, error)
	UserRevenueSinceFunc func(ctx context.Context, userID string, since time.Time) (float64, error)
	UpsertFunc           func(ctx context.Context, rec *domain.CustomerLifetimeRecord) error
	PayingUserIDsFunc    func(ctx context.Context) ([]string, error)
	RecordsFunc          func(ctx context.Context, filter domain.QueryFilter) ([]domain.CustomerLifetimeRecord, error)
	ChurnStatsFunc       func(ctx context.Context) (*domain.ChurnStats, error)
	ChurnByCohortFunc    func(ctx context.Context) ([]domain.CohortChurn, error)
	CohortLTVFunc        func(ctx context.Context) ([]domain.CohortLTV, error)
	AOVTrendFunc         func(ctx context.Context, months int) ([]domain.AOVPoint, error)
	TopCustomersFunc     func(ctx context.Context, limit int) ([]domain.CustomerLifetimeRecord, error)
}

func (m *MockCustomerValueRepository) UserPaymentStats(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
	if m.UserPaymentStatsFunc != nil {
		return m.UserPaymentStatsFunc(ctx, userID)
	}
	return &domain.UserPaymentStats{}, nil
}

func (m *MockCustomerValueRepository) UserSessionStats(ctx context.Context, userID string) (*domain.UserSessionStats, error) {
	if m.UserSessionStatsFunc != nil {
		return m.UserSessionStatsFunc(ctx, userID)
	}
	return &domain.UserSessionStats{}, nil
}

func (m *MockCustomerValueRepository) UserRevenueSince(ctx context.Context, userID string, since time.Time) (float64, error) {
	if m.UserRevenueSinceFunc != nil {
		return m.UserRevenueSinceFunc(ctx, userID, since)
	}
	return 0, nil
}

func (m *MockCustomerValueRepository) Upsert(ctx context.Context, rec *domain.CustomerLifetimeRecord) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, rec)
	}
	return nil
}

func (m *MockCustomerValueRepository) PayingUserIDs(ctx context.Context) ([]string, error) {
	if m.PayingUserIDsFunc != nil {
		return m.PayingUserIDsFunc(ctx)
	}
	return nil, nil
}

func (m *MockCustomerValueRepository) Records(ctx context.Context, filter domain.QueryFilter) ([]domain.CustomerLifetimeRecord, error) {
	if m.RecordsFunc != nil {
		return m.RecordsFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockCustomerValueRepository) ChurnStats(ctx context.Context) (*domain.ChurnStats, error) {
	if m.ChurnStatsFunc != nil {
		return m.ChurnStatsFunc(ctx)
	}
	return &domain.ChurnStats{}, nil
}

func (m *MockCustomerValueRepository) ChurnByCohort(ctx context.Context) ([]domain.CohortChurn, error) {
	if m.ChurnByCohortFunc != nil {
		return m.ChurnByCohortFunc(ctx)
	}
	return nil, nil
}

func (m *MockCustomerValueRepository) CohortLTV(ctx context.Context) ([]domain.CohortLTV, error) {
	if m.CohortLTVFunc != nil {
		return m.CohortLTVFunc(ctx)
	}
	return nil, nil
}

func (m *MockCustomerValueRepository) AOVTrend(ctx context.Context, months int) ([]domain.AOVPoint, error) {
	if m.AOVTrendFunc != nil {
		return m.AOVTrendFunc(ctx, months)
	}
	return nil, nil
}

func (m *MockCustomerValueRepository) TopCustomers(ctx context.Context, limit int) ([]domain.CustomerLifetimeRecord, error) {
	if m.TopCustomersFunc != nil {
		return m.TopCustomersFunc(ctx, limit)
	}
	return nil, nil
}
