// Package synthetic provides a deterministic in-memory metric source for
// demos and local development without a backend database.
package synthetic

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
)

type Source struct {
	log *zap.Logger
}

func NewSource(log *zap.Logger) ports.MetricSource {
	return &Source{log: log}
}

func (s *Source) Available(ctx context.Context) bool { return true }

// rng returns a generator seeded from the window so that repeated queries
// for the same window return identical data.
func rng(w domain.Window) *rand.Rand {
	return rand.New(rand.NewSource(w.From.Unix() ^ w.To.Unix()))
}

func (s *Source) PaymentsByDay(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error) {
	r := rng(w)
	days := int(w.Days())
	rows := make([]domain.PaymentDayRow, 0, days)
	for d := 0; d < days; d++ {
		day := w.From.AddDate(0, 0, d)
		count := 3 + r.Intn(12)
		revenue := 0.0
		for i := 0; i < count; i++ {
			revenue += 50 + float64(r.Intn(150))
		}
		rows = append(rows, domain.PaymentDayRow{
			Day:     day.Format("2006-01-02"),
			Count:   count,
			Revenue: math.Round(revenue*100) / 100,
		})
	}
	return rows, nil
}

func (s *Source) ErrorCounts(ctx context.Context, w domain.Window) (domain.ErrorSummary, error) {
	r := rng(w)
	total := r.Intn(20)
	return domain.ErrorSummary{Total: total, Webhook: r.Intn(total + 1)}, nil
}

func (s *Source) FeatureCounts(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error) {
	r := rng(w)
	features := []struct{ name, category string }{
		{"ocr_upload", "analysis"},
		{"ai_analysis", "analysis"},
		{"pdf_export", "export"},
		{"history_view", "navigation"},
	}
	rows := make([]domain.FeatureUsageRow, 0, len(features))
	for _, f := range features {
		usage := 10 + r.Intn(90)
		rows = append(rows, domain.FeatureUsageRow{
			FeatureName:     f.name,
			FeatureCategory: f.category,
			TotalUsage:      usage,
			UniqueUsers:     1 + r.Intn(usage),
			SuccessRate:     float64(80 + r.Intn(21)),
		})
	}
	return rows, nil
}

func (s *Source) FunnelCounts(ctx context.Context, w domain.Window) (domain.FunnelCounts, error) {
	r := rng(w)
	landing := 200 + r.Intn(300)
	viewed := landing * (50 + r.Intn(30)) / 100
	uploaded := viewed * (30 + r.Intn(30)) / 100
	results := uploaded * (70 + r.Intn(25)) / 100
	clicked := results * (20 + r.Intn(30)) / 100
	completed := clicked * (40 + r.Intn(40)) / 100
	return domain.FunnelCounts{
		Landing:           landing,
		ViewedInfo:        viewed,
		UploadedAnalysis:  uploaded,
		ViewedResults:     results,
		ClickedPayment:    clicked,
		PaymentPageOpened: clicked,
		PaymentCompleted:  completed,
		ReturningUsers:    landing * (10 + r.Intn(20)) / 100,
	}, nil
}

func (s *Source) AIInvocations(ctx context.Context, w domain.Window) ([]domain.AIInvocationRow, error) {
	r := rng(w)
	models := []string{"glm-4.5", "glm-4.5-air"}
	n := 20 + r.Intn(60)
	rows := make([]domain.AIInvocationRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, domain.AIInvocationRow{
			AIModel:          models[r.Intn(len(models))],
			PromptTokens:     500 + r.Intn(3000),
			CompletionTokens: 200 + r.Intn(1500),
			AITimeMs:         float64(800 + r.Intn(6000)),
			AnalysisType:     "blood_test",
		})
	}
	return rows, nil
}

func (s *Source) BehaviorStats(ctx context.Context, w domain.Window) (domain.BehaviorSummary, error) {
	r := rng(w)
	total := 100 + r.Intn(200)
	returning := total * (15 + r.Intn(20)) / 100
	return domain.BehaviorSummary{
		TotalUsers:         total,
		NewUsers:           total - returning,
		ReturningUsers:     returning,
		AvgSessionDuration: float64(120 + r.Intn(400)),
		AvgPageViews:       math.Round((2+r.Float64()*5)*100) / 100,
		AvgAnalyses:        math.Round(r.Float64()*2*100) / 100,
	}, nil
}
