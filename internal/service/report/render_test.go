package report

import (
	"strings"
	"testing"
	"time"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

func sampleReport() *domain.PeriodReport {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cur := &domain.PeriodMetrics{Window: domain.LastDays(now, 7)}
	cur.Payments.Total = 12
	cur.Payments.Revenue = 1800
	cur.Payments.AvgCheck = 150
	cur.Payments.ByDay = map[string]domain.DayStat{
		"2025-03-08": {Count: 5, Revenue: 750},
		"2025-03-09": {Count: 7, Revenue: 1050},
	}
	cur.Errors.Total = 3
	cur.Errors.Webhook = 1
	cur.Features.OCR = 20
	cur.Features.AI = 15
	cur.Funnel.Stages = []domain.FunnelStage{
		{Name: "landing", Count: 100, FromLanding: 100},
		{Name: "payment_completed", Count: 12, FromLanding: 12},
	}
	cur.Tokens.TotalRequests = 15
	cur.Tokens.TotalTokens = 45000
	cur.Tokens.TotalCostUSD = 0.31

	return &domain.PeriodReport{
		ID:          "r-1",
		Label:       PeriodWeek,
		GeneratedAt: now,
		Current:     cur,
		Forecast:    domain.Forecast{DailyAvg: 257, MonthlyProjection: 7714, MonthlyGoal: 30000},
		Alerts:      &domain.AlertSet{},
		Health:      &domain.HealthScore{Overall: 72, Grade: domain.HealthGradeGood, Status: "Продукт работает хорошо, есть потенциал"},
	}
}

func TestRender_SectionOrder(t *testing.T) {
	out := Render(sampleReport())

	sections := []string{
		"Еженедельный отчет",
		"Финансовая статистика",
		"Динамика по дням",
		"Воронка конверсии",
		"Использование функций",
		"Ошибки",
		"Прогноз",
		"AI токены и стоимость",
		"Health Score",
	}
	pos := -1
	for _, s := range sections {
		i := strings.Index(out, s)
		if i < 0 {
			t.Fatalf("Section %q missing from report:\n%s", s, out)
		}
		if i < pos {
			t.Errorf("Section %q out of order", s)
		}
		pos = i
	}
}

func TestRender_NoDataPeriod(t *testing.T) {
	rep := sampleReport()
	rep.Current = &domain.PeriodMetrics{
		Missing: []string{domain.SectionPayments, domain.SectionErrors},
	}

	out := Render(rep)
	if !strings.Contains(out, "Нет данных за этот период") {
		t.Errorf("Expected the no-data notice, got:\n%s", out)
	}
	if strings.Contains(out, "Финансовая статистика") {
		t.Error("No-data report must not render metric sections")
	}
	if !strings.Contains(out, domain.SectionPayments) {
		t.Error("No-data report must list the missing sections")
	}
}

func TestRender_DeltaSuffixOnlyWithComparison(t *testing.T) {
	rep := sampleReport()
	out := Render(rep)
	if strings.Contains(out, "(+") {
		t.Error("Report without comparison must not render deltas")
	}

	var cmp domain.Comparison
	cmp.Payments.Revenue = domain.Delta{Percent: 25, Trend: domain.TrendUp, Emoji: "📈"}
	rep.Comparison = &cmp
	out = Render(rep)
	if !strings.Contains(out, "(+25% 📈)") {
		t.Errorf("Expected revenue delta suffix, got:\n%s", out)
	}
}

func TestRender_StatusLinePriority(t *testing.T) {
	rep := sampleReport()

	out := Render(rep)
	if !strings.Contains(out, "Система работает стабильно") {
		t.Error("Quiet report must close with the stable status")
	}

	rep.Alerts.Warning = []domain.Finding{{Type: "low_avg_check", Title: "Средний чек ниже цели"}}
	out = Render(rep)
	if !strings.Contains(out, "Есть зоны для внимания") {
		t.Error("Warnings must set the attention status")
	}

	rep.Alerts.Critical = []domain.Finding{{Type: "high_errors", Title: "Критический уровень ошибок"}}
	out = Render(rep)
	if !strings.Contains(out, "Требуется немедленное внимание") {
		t.Error("Critical findings must override the warning status")
	}
	if strings.Contains(out, "Есть зоны для внимания") {
		t.Error("Only one status line may appear")
	}
}

func TestRender_ZeroErrorsShortcut(t *testing.T) {
	rep := sampleReport()
	rep.Current.Errors = domain.ErrorSummary{}

	out := Render(rep)
	if !strings.Contains(out, "Ошибок нет") {
		t.Error("Zero errors must render the all-clear line")
	}
}

func TestRender_ByDayCappedAtLastSeven(t *testing.T) {
	rep := sampleReport()
	rep.Current.Payments.ByDay = map[string]domain.DayStat{}
	for d := 1; d <= 10; d++ {
		rep.Current.Payments.ByDay[time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")] = domain.DayStat{Count: 1, Revenue: 100}
	}

	out := Render(rep)
	if strings.Contains(out, "2025-03-03") {
		t.Error("Daily breakdown must keep only the last 7 days")
	}
	if !strings.Contains(out, "2025-03-10") {
		t.Error("Most recent day missing from daily breakdown")
	}
}

func TestRender_TelegramLengthLimit(t *testing.T) {
	out := Render(sampleReport())
	if len(out) > 4096 {
		t.Errorf("Typical report exceeds one Telegram message: %d bytes", len(out))
	}
}
