package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/mocks"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

func testTariffs() config.TariffsConfig {
	return config.TariffsConfig{
		Models: map[string]config.ModelTariffConfig{
			"glm-4.5": {InputPerMTok: 0.6, OutputPerMTok: 2.2},
		},
		Default: config.ModelTariffConfig{InputPerMTok: 0.6, OutputPerMTok: 2.2},
	}
}

func testWindow() domain.Window {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return domain.LastDays(now, 7)
}

func TestAggregate_SummarizesPayments(t *testing.T) {
	source := &mocks.MockMetricSource{
		PaymentsByDayFunc: func(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error) {
			return []domain.PaymentDayRow{
				{Day: "2025-03-08", Count: 3, Revenue: 450},
				{Day: "2025-03-09", Count: 2, Revenue: 250},
				{Day: "2025-03-10", Count: 0, Revenue: 0},
			}, nil
		},
	}
	service := NewService(source, testTariffs(), zap.NewNop())

	m, err := service.Aggregate(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if m.Payments.Total != 5 {
		t.Errorf("Expected 5 payments, got %d", m.Payments.Total)
	}
	if m.Payments.Revenue != 700 {
		t.Errorf("Expected revenue 700, got %f", m.Payments.Revenue)
	}
	if m.Payments.AvgCheck != 140 {
		t.Errorf("Expected avg check 140, got %f", m.Payments.AvgCheck)
	}
	if _, ok := m.Payments.ByDay["2025-03-10"]; ok {
		t.Error("Zero-count day should not appear in ByDay")
	}
	if len(m.Missing) != 0 {
		t.Errorf("Expected no missing sections, got %v", m.Missing)
	}
}

func TestAggregate_FailedSectionZeroedAndMarkedMissing(t *testing.T) {
	source := &mocks.MockMetricSource{
		PaymentsByDayFunc: func(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error) {
			return []domain.PaymentDayRow{{Day: "2025-03-09", Count: 1, Revenue: 100}}, nil
		},
		FunnelCountsFunc: func(ctx context.Context, w domain.Window) (domain.FunnelCounts, error) {
			return domain.FunnelCounts{}, errors.New("connection reset")
		},
	}
	service := NewService(source, testTariffs(), zap.NewNop())

	m, err := service.Aggregate(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	found := false
	for _, s := range m.Missing {
		if s == domain.SectionFunnel {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected funnel in missing sections, got %v", m.Missing)
	}
	if len(m.Funnel.Stages) != 0 {
		t.Error("Failed section must stay zero-valued")
	}
	if m.Payments.Total != 1 {
		t.Error("Healthy sections must survive a failed one")
	}
}

func TestAggregate_UnavailableSourceMarksAllSections(t *testing.T) {
	unavailable := func(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error) {
		return nil, domain.ErrDataSourceUnavailable
	}
	source := &mocks.MockMetricSource{
		PaymentsByDayFunc: unavailable,
		ErrorCountsFunc: func(ctx context.Context, w domain.Window) (domain.ErrorSummary, error) {
			return domain.ErrorSummary{}, domain.ErrDataSourceUnavailable
		},
		FeatureCountsFunc: func(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error) {
			return nil, domain.ErrDataSourceUnavailable
		},
		FunnelCountsFunc: func(ctx context.Context, w domain.Window) (domain.FunnelCounts, error) {
			return domain.FunnelCounts{}, domain.ErrDataSourceUnavailable
		},
		AIInvocationsFunc: func(ctx context.Context, w domain.Window) ([]domain.AIInvocationRow, error) {
			return nil, domain.ErrDataSourceUnavailable
		},
		BehaviorStatsFunc: func(ctx context.Context, w domain.Window) (domain.BehaviorSummary, error) {
			return domain.BehaviorSummary{}, domain.ErrDataSourceUnavailable
		},
	}
	service := NewService(source, testTariffs(), zap.NewNop())

	m, err := service.Aggregate(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(m.Missing) != 6 {
		t.Errorf("Expected 6 missing sections, got %d: %v", len(m.Missing), m.Missing)
	}
	if !m.Empty() {
		t.Error("Fully unavailable period must report empty")
	}
}

func TestAggregate_FeatureSummary(t *testing.T) {
	source := &mocks.MockMetricSource{
		FeatureCountsFunc: func(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error) {
			return []domain.FeatureUsageRow{
				{FeatureName: "ocr_upload", TotalUsage: 40, UniqueUsers: 25},
				{FeatureName: "ai_analysis", TotalUsage: 30, UniqueUsers: 20},
				{FeatureName: "pdf_export", TotalUsage: 12, UniqueUsers: 9},
				{FeatureName: "share_link", TotalUsage: 8, UniqueUsers: 8},
				{FeatureName: "history", TotalUsage: 5, UniqueUsers: 4},
				{FeatureName: "settings", TotalUsage: 2, UniqueUsers: 2},
			}, nil
		},
	}
	service := NewService(source, testTariffs(), zap.NewNop())

	m, err := service.Aggregate(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if m.Features.OCR != 40 {
		t.Errorf("Expected OCR usage 40, got %d", m.Features.OCR)
	}
	if m.Features.AI != 30 {
		t.Errorf("Expected AI usage 30, got %d", m.Features.AI)
	}
	if len(m.Features.Top) != 5 {
		t.Errorf("Top features capped at 5, got %d", len(m.Features.Top))
	}
}

func TestNormalizeFunnel_Rates(t *testing.T) {
	sum := normalizeFunnel(domain.FunnelCounts{
		Landing:          200,
		ViewedInfo:       100,
		UploadedAnalysis: 50,
		PaymentCompleted: 10,
		ReturningUsers:   60,
	})

	if len(sum.Stages) != 8 {
		t.Fatalf("Expected 8 stages, got %d", len(sum.Stages))
	}
	if sum.Stages[1].FromPrevious != 50 {
		t.Errorf("Expected viewed_info 50%% of landing, got %f", sum.Stages[1].FromPrevious)
	}
	if sum.Stages[2].FromLanding != 25 {
		t.Errorf("Expected uploaded_analysis 25%% of landing, got %f", sum.Stages[2].FromLanding)
	}
	// returning_users follows payment_completed; independent predicates
	// can exceed 100%.
	if sum.Stages[7].FromPrevious != 600 {
		t.Errorf("Expected returning_users at 600%% of previous stage, got %f", sum.Stages[7].FromPrevious)
	}
}

func TestNormalizeFunnel_ZeroLanding(t *testing.T) {
	sum := normalizeFunnel(domain.FunnelCounts{})
	for _, st := range sum.Stages {
		if st.FromLanding != 0 || st.FromPrevious != 0 {
			t.Errorf("Stage %s must have zero rates on empty funnel", st.Name)
		}
	}
}
