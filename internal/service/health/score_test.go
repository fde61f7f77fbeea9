package health

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

func testGoals() config.GoalsConfig {
	return config.GoalsConfig{
		MonthlyRevenue:   30000,
		ErrorRateMax:     5,
		ActivationTarget: 10,
		RetentionTarget:  15,
	}
}

// fullMetrics builds a 30-day period where every component scores exactly 100.
func fullMetrics() *domain.PeriodMetrics {
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	m := &domain.PeriodMetrics{Window: domain.LastDays(now, 30)}
	m.Funnel.Stages = []domain.FunnelStage{
		{Name: "landing", Count: 1000},
		{Name: "uploaded_analysis", Count: 100}, // 10% = activation target
	}
	m.Behavior.TotalUsers = 100
	m.Behavior.ReturningUsers = 15 // 15% = retention target
	m.Payments.Total = 300
	m.Payments.Revenue = 30000 // projects exactly to the monthly goal
	m.Errors.Total = 0
	return m
}

func TestScore_PerfectPeriod(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())

	hs := service.Score(fullMetrics())
	if hs == nil {
		t.Fatal("Expected a score")
	}
	if hs.Overall != 100 {
		t.Errorf("Expected overall 100, got %d", hs.Overall)
	}
	if hs.Grade != domain.HealthGradeExcellent {
		t.Errorf("Expected excellent grade, got %s", hs.Grade)
	}
	if len(hs.Breakdown) != 4 {
		t.Errorf("Expected 4 components, got %v", hs.Breakdown)
	}
}

func TestScore_WeightedComposite(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := fullMetrics()
	// Halve revenue: projection 15000 vs goal 30000 gives revenue score 50.
	m.Payments.Revenue = 15000

	hs := service.Score(m)
	if hs == nil {
		t.Fatal("Expected a score")
	}
	if hs.Breakdown[domain.HealthComponentRevenue] != 50 {
		t.Errorf("Expected revenue score 50, got %d", hs.Breakdown[domain.HealthComponentRevenue])
	}
	// (100*30 + 100*30 + 50*25 + 100*15) / 100 = 87.5 -> 88
	if hs.Overall != 88 {
		t.Errorf("Expected overall 88, got %d", hs.Overall)
	}
}

func TestScore_RenormalizesOnMissingSections(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := fullMetrics()
	m.Missing = []string{domain.SectionFunnel, domain.SectionBehavior}
	// Revenue at 50, quality at 100; weights 25 and 15 renormalize to
	// (50*25 + 100*15) / 40 = 68.75 -> 69.
	m.Payments.Revenue = 15000

	hs := service.Score(m)
	if hs == nil {
		t.Fatal("Expected a score")
	}
	if _, ok := hs.Breakdown[domain.HealthComponentActivation]; ok {
		t.Error("Missing funnel must drop the activation component")
	}
	if _, ok := hs.Breakdown[domain.HealthComponentRetention]; ok {
		t.Error("Missing behavior must drop the retention component")
	}
	if hs.Overall != 69 {
		t.Errorf("Expected renormalized overall 69, got %d", hs.Overall)
	}
}

func TestScore_QualityNeedsBothSections(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := fullMetrics()
	m.Missing = []string{domain.SectionErrors}

	hs := service.Score(m)
	if hs == nil {
		t.Fatal("Expected a score")
	}
	if _, ok := hs.Breakdown[domain.HealthComponentQuality]; ok {
		t.Error("Missing errors must drop the quality component")
	}
	if _, ok := hs.Breakdown[domain.HealthComponentRevenue]; !ok {
		t.Error("Revenue component must survive missing errors")
	}
}

func TestScore_NilWhenEverythingMissing(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := fullMetrics()
	m.Missing = []string{
		domain.SectionPayments,
		domain.SectionErrors,
		domain.SectionFunnel,
		domain.SectionBehavior,
	}

	if hs := service.Score(m); hs != nil {
		t.Errorf("Expected nil score with every input missing, got %+v", hs)
	}
}

func TestScore_QualityDegradesWithErrors(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := fullMetrics()
	// 6 errors over 300 payments = 2% rate; 100 - 2/5*100 = 60.
	m.Errors.Total = 6

	hs := service.Score(m)
	if hs.Breakdown[domain.HealthComponentQuality] != 60 {
		t.Errorf("Expected quality 60, got %d", hs.Breakdown[domain.HealthComponentQuality])
	}

	// At or beyond the maximum rate the score floors at zero.
	m.Errors.Total = 30 // 10% rate, double the 5% max
	hs = service.Score(m)
	if hs.Breakdown[domain.HealthComponentQuality] != 0 {
		t.Errorf("Expected quality 0, got %d", hs.Breakdown[domain.HealthComponentQuality])
	}
}

func TestScore_SubScoresCapAt100(t *testing.T) {
	service := NewService(testGoals(), zap.NewNop())
	m := fullMetrics()
	m.Payments.Revenue = 90000 // triple the goal
	m.Behavior.ReturningUsers = 60

	hs := service.Score(m)
	if hs.Breakdown[domain.HealthComponentRevenue] != 100 {
		t.Errorf("Revenue score must cap at 100, got %d", hs.Breakdown[domain.HealthComponentRevenue])
	}
	if hs.Breakdown[domain.HealthComponentRetention] != 100 {
		t.Errorf("Retention score must cap at 100, got %d", hs.Breakdown[domain.HealthComponentRetention])
	}
}

func TestGradeBands(t *testing.T) {
	cases := []struct {
		score int
		grade string
	}{
		{100, domain.HealthGradeExcellent},
		{80, domain.HealthGradeExcellent},
		{79, domain.HealthGradeGood},
		{60, domain.HealthGradeGood},
		{59, domain.HealthGradeFair},
		{40, domain.HealthGradeFair},
		{39, domain.HealthGradePoor},
		{0, domain.HealthGradePoor},
	}
	for _, tc := range cases {
		if got := domain.GradeFor(tc.score); got != tc.grade {
			t.Errorf("Score %d: expected %s, got %s", tc.score, tc.grade, got)
		}
	}
}
