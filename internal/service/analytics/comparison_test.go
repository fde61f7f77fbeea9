package analytics

import (
	"testing"
	"time"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

func TestCompare_ZeroPrevious(t *testing.T) {
	d := Compare(150, 0)
	if d.Percent != 100 || d.Trend != domain.TrendUp {
		t.Errorf("Growth from zero should be 100%% up, got %d%% %s", d.Percent, d.Trend)
	}
	if d.Absolute != 150 {
		t.Errorf("Expected absolute 150, got %f", d.Absolute)
	}

	d = Compare(0, 0)
	if d.Percent != 0 || d.Trend != domain.TrendStable {
		t.Errorf("Zero vs zero should be stable, got %d%% %s", d.Percent, d.Trend)
	}
}

func TestCompare_DeadBand(t *testing.T) {
	// 4% up: within the band, stable.
	d := Compare(104, 100)
	if d.Trend != domain.TrendStable {
		t.Errorf("4%% change should be stable, got %s", d.Trend)
	}

	// 6% up: outside the band.
	d = Compare(106, 100)
	if d.Trend != domain.TrendUp {
		t.Errorf("6%% change should trend up, got %s", d.Trend)
	}

	// 6% down.
	d = Compare(94, 100)
	if d.Trend != domain.TrendDown {
		t.Errorf("-6%% change should trend down, got %s", d.Trend)
	}
	if d.Percent != -6 {
		t.Errorf("Expected -6%%, got %d", d.Percent)
	}
}

func TestCompare_Symmetry(t *testing.T) {
	sign := func(n int) int {
		switch {
		case n > 0:
			return 1
		case n < 0:
			return -1
		default:
			return 0
		}
	}

	pairs := [][2]float64{
		{600, 500},
		{500, 600},
		{100, 100},
		{103, 100}, // inside the dead band both ways
		{5, 0},
		{0, 5},
		{12500.50, 9800.25},
	}
	for _, p := range pairs {
		fwd := Compare(p[0], p[1])
		rev := Compare(p[1], p[0])
		if fwd.Absolute != -rev.Absolute {
			t.Errorf("Compare(%v, %v): absolute %f is not the negative of reverse %f",
				p[0], p[1], fwd.Absolute, rev.Absolute)
		}
		if sign(fwd.Percent) != -sign(rev.Percent) {
			t.Errorf("Compare(%v, %v): percent sign %d does not oppose reverse %d",
				p[0], p[1], fwd.Percent, rev.Percent)
		}
	}
}

func TestCompare_PercentRounding(t *testing.T) {
	d := Compare(115, 103)
	// 12/103 = 11.65% rounds to 12.
	if d.Percent != 12 {
		t.Errorf("Expected 12%%, got %d", d.Percent)
	}
}

func TestComparePeriods_NilOnEmptyPrevious(t *testing.T) {
	cur := &domain.PeriodMetrics{}
	cur.Payments.Total = 5

	if cmp := ComparePeriods(cur, &domain.PeriodMetrics{}); cmp != nil {
		t.Error("Comparison against an empty previous period must be nil")
	}
	if cmp := ComparePeriods(cur, nil); cmp != nil {
		t.Error("Comparison against a nil previous period must be nil")
	}
}

func TestComparePeriods_AllMetrics(t *testing.T) {
	cur := &domain.PeriodMetrics{}
	cur.Payments.Total = 20
	cur.Payments.Revenue = 3000
	cur.Payments.AvgCheck = 150
	cur.Errors.Total = 4
	cur.Features.OCR = 50
	cur.Features.AI = 30

	prev := &domain.PeriodMetrics{}
	prev.Payments.Total = 10
	prev.Payments.Revenue = 1000
	prev.Payments.AvgCheck = 100
	prev.Errors.Total = 8
	prev.Features.OCR = 50
	prev.Features.AI = 10

	cmp := ComparePeriods(cur, prev)
	if cmp == nil {
		t.Fatal("Expected a comparison")
	}
	if cmp.Payments.Total.Percent != 100 {
		t.Errorf("Expected payments +100%%, got %d", cmp.Payments.Total.Percent)
	}
	if cmp.Payments.Revenue.Percent != 200 || cmp.Payments.Revenue.Trend != domain.TrendUp {
		t.Errorf("Expected revenue +200%% up, got %d%% %s", cmp.Payments.Revenue.Percent, cmp.Payments.Revenue.Trend)
	}
	if cmp.Errors.Total.Percent != -50 || cmp.Errors.Total.Trend != domain.TrendDown {
		t.Errorf("Expected errors -50%% down, got %d%% %s", cmp.Errors.Total.Percent, cmp.Errors.Total.Trend)
	}
	if cmp.Features.OCR.Trend != domain.TrendStable {
		t.Errorf("Unchanged OCR should be stable, got %s", cmp.Features.OCR.Trend)
	}
}

func TestWindowPrevious_BackToBack(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	w := domain.LastDays(now, 7)
	p := w.Previous()

	if !p.To.Equal(w.From) {
		t.Error("Previous window must end exactly where the current one starts")
	}
	if p.To.Sub(p.From) != w.To.Sub(w.From) {
		t.Error("Previous window must have equal length")
	}
}

func TestForecast_LinearProjection(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	m := &domain.PeriodMetrics{Window: domain.LastDays(now, 7)}
	m.Payments.Revenue = 700

	f := Forecast(m, 30000)
	if f.DailyAvg != 100 {
		t.Errorf("Expected daily avg 100, got %f", f.DailyAvg)
	}
	if f.MonthlyProjection != 3000 {
		t.Errorf("Expected monthly projection 3000, got %f", f.MonthlyProjection)
	}
	if f.MonthlyGoal != 30000 {
		t.Errorf("Expected goal 30000, got %f", f.MonthlyGoal)
	}
}
