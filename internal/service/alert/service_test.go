package alert

import (
	"testing"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

func testGoals() config.GoalsConfig {
	return config.GoalsConfig{
		MonthlyRevenue:    30000,
		WeeklyRevenue:     7500,
		DailyRevenue:      1000,
		AvgCheckTarget:    100,
		AvgCheckWarnGap:   30,
		ErrorRateMax:      5,
		OCRAdoptionTarget: 20,
		AIAdoptionTarget:  30,
		ActivationTarget:  10,
		RetentionTarget:   15,
	}
}

func hasFinding(findings []domain.Finding, typ string) bool {
	for _, f := range findings {
		if f.Type == typ {
			return true
		}
	}
	return false
}

// healthyMetrics builds a period no rule should fire on: revenue above goal,
// check on target, adoption between targets, few errors.
func healthyMetrics() *domain.PeriodMetrics {
	m := &domain.PeriodMetrics{}
	m.Payments.Total = 80
	m.Payments.Revenue = 8000
	m.Payments.AvgCheck = 100
	m.Errors.Total = 2
	m.Features.OCR = 20 // 25%, above the 20% target
	m.Features.AI = 20  // 25%, between critical 5% and opportunity 30%
	return m
}

func growingComparison() *domain.Comparison {
	var c domain.Comparison
	c.Payments.Revenue = domain.Delta{Percent: 10, Trend: domain.TrendUp}
	c.Payments.Total = domain.Delta{Percent: 8, Trend: domain.TrendUp}
	c.Payments.AvgCheck = domain.Delta{Percent: 2, Trend: domain.TrendStable}
	c.Errors.Total = domain.Delta{Percent: 0, Trend: domain.TrendStable}
	return &c
}

func TestEvaluate_CriticalRevenueDrop(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	cmp := growingComparison()
	cmp.Payments.Revenue = domain.Delta{Absolute: -3000, Percent: -25, Trend: domain.TrendDown}

	set := service.Evaluate(m, cmp)
	if !hasFinding(set.Critical, "revenue_drop") {
		t.Errorf("Expected revenue_drop at -25%%, got %+v", set.Critical)
	}
	if !set.NeedsImmediateAttention() {
		t.Error("Critical findings must demand immediate attention")
	}
}

func TestEvaluate_RevenueDropBoundary(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	cmp := growingComparison()
	// Exactly -20 stays below the critical threshold.
	cmp.Payments.Revenue = domain.Delta{Percent: -20, Trend: domain.TrendDown}

	set := service.Evaluate(m, cmp)
	if hasFinding(set.Critical, "revenue_drop") {
		t.Error("Exactly -20%% must not be critical")
	}
	// A non-growing revenue still warrants the stagnation warning.
	if !hasFinding(set.Warning, "revenue_stagnation") {
		t.Errorf("Expected revenue_stagnation on a down trend, got %+v", set.Warning)
	}
}

func TestEvaluate_WebhookBlocking(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	m.Payments.Total = 10
	m.Payments.Revenue = 1000
	m.Errors.Webhook = 6 // more than half of payments

	set := service.Evaluate(m, nil)
	if !hasFinding(set.Critical, "webhook_blocking") {
		t.Errorf("Expected webhook_blocking at 6 errors over 10 payments, got %+v", set.Critical)
	}
}

func TestEvaluate_HighErrorVolume(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	m.Errors.Total = 51

	set := service.Evaluate(m, nil)
	if !hasFinding(set.Critical, "high_errors") {
		t.Errorf("Expected high_errors above 50, got %+v", set.Critical)
	}

	m.Errors.Total = 50
	set = service.Evaluate(m, nil)
	if hasFinding(set.Critical, "high_errors") {
		t.Error("Exactly 50 errors must not be critical")
	}
}

func TestEvaluate_LowAIAdoptionNeedsVolume(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	m.Payments.Total = 40 // under the 50-payment floor
	m.Features.AI = 0
	m.Features.OCR = 20

	set := service.Evaluate(m, nil)
	if hasFinding(set.Critical, "low_ai_adoption") {
		t.Error("AI adoption rule needs over 50 payments")
	}

	m.Payments.Total = 60
	m.Features.OCR = 13 // keep OCR above its 20% warning target
	set = service.Evaluate(m, nil)
	if !hasFinding(set.Critical, "low_ai_adoption") {
		t.Errorf("Expected low_ai_adoption at 0%% over 60 payments, got %+v", set.Critical)
	}
}

func TestEvaluate_AvgCheckWarning(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	m.Payments.AvgCheck = 65 // gap 35 over the 30 warn gap

	set := service.Evaluate(m, growingComparison())
	if !hasFinding(set.Warning, "low_avg_check") {
		t.Errorf("Expected low_avg_check at 65 vs target 100, got %+v", set.Warning)
	}

	m.Payments.AvgCheck = 70 // gap exactly 30, within tolerance
	set = service.Evaluate(m, growingComparison())
	if hasFinding(set.Warning, "low_avg_check") {
		t.Error("Gap equal to the tolerance must not warn")
	}
}

func TestEvaluate_Opportunities(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	m.Payments.Revenue = 9000
	m.Features.AI = 30 // 37.5%, above the 30% target
	cmp := growingComparison()
	cmp.Payments.Revenue = domain.Delta{Absolute: 4000, Percent: 80, Trend: domain.TrendUp}
	cmp.Payments.AvgCheck = domain.Delta{Percent: 20, Trend: domain.TrendUp}
	cmp.Errors.Total = domain.Delta{Percent: -40, Trend: domain.TrendDown}

	set := service.Evaluate(m, cmp)
	for _, typ := range []string{
		"revenue_surge",
		"avgcheck_growth",
		"high_ai_adoption",
		"errors_decrease",
		"revenue_goal_achieved",
	} {
		if !hasFinding(set.Opportunity, typ) {
			t.Errorf("Expected opportunity %s, got %+v", typ, set.Opportunity)
		}
	}
	if set.NeedsImmediateAttention() {
		t.Error("Opportunities alone must not demand attention")
	}
}

func TestEvaluate_NilComparisonSilencesTrendRules(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()

	set := service.Evaluate(m, nil)
	for _, f := range append(append(set.Critical, set.Warning...), set.Opportunity...) {
		switch f.Type {
		case "revenue_drop", "revenue_stagnation", "payments_decline",
			"errors_growth", "revenue_surge", "avgcheck_growth", "errors_decrease":
			t.Errorf("Trend rule %s fired without a comparison", f.Type)
		}
	}
}

func TestEvaluate_QuietOnHealthyPeriod(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := healthyMetrics()
	m.Payments.Revenue = 7000 // below the weekly goal, not a surge

	set := service.Evaluate(m, growingComparison())
	if len(set.Critical) != 0 || len(set.Warning) != 0 {
		t.Errorf("Healthy period raised %d critical, %d warning: %+v %+v",
			len(set.Critical), len(set.Warning), set.Critical, set.Warning)
	}
	if set.Total() != len(set.Opportunity) {
		t.Errorf("Total must count every tier, got %d", set.Total())
	}
}
