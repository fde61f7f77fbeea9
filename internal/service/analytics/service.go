// Package analytics derives normalized period metrics from the raw metric
// source and compares them across periods.
package analytics

import (
	"context"
	"errors"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/observability/telemetry"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

// Service aggregates one window of raw data into PeriodMetrics. Sections are
// queried concurrently; a failing section yields a zero summary plus a
// Missing marker instead of failing the whole period.
type Service struct {
	source  ports.MetricSource
	tariffs config.TariffsConfig
	log     *zap.Logger
}

func NewService(source ports.MetricSource, tariffs config.TariffsConfig, log *zap.Logger) *Service {
	return &Service{
		source:  source,
		tariffs: tariffs,
		log:     log,
	}
}

// Aggregate builds the PeriodMetrics for one window.
func (s *Service) Aggregate(ctx context.Context, w domain.Window) (*domain.PeriodMetrics, error) {
	m := &domain.PeriodMetrics{Window: w}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		missing []string
	)
	fail := func(section string, err error) {
		mu.Lock()
		missing = append(missing, section)
		mu.Unlock()
		telemetry.MetricQueriesTotal.WithLabelValues(section, "error").Inc()
		if errors.Is(err, domain.ErrDataSourceUnavailable) {
			s.log.Warn("Metric section unavailable", zap.String("section", section))
			return
		}
		s.log.Error("Metric section query failed", zap.String("section", section), zap.Error(err))
	}
	ok := func(section string) {
		telemetry.MetricQueriesTotal.WithLabelValues(section, "ok").Inc()
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		rows, err := s.source.PaymentsByDay(ctx, w)
		if err != nil {
			fail(domain.SectionPayments, err)
			return
		}
		m.Payments = summarizePayments(rows)
		ok(domain.SectionPayments)
	}()
	go func() {
		defer wg.Done()
		sum, err := s.source.ErrorCounts(ctx, w)
		if err != nil {
			fail(domain.SectionErrors, err)
			return
		}
		m.Errors = sum
		ok(domain.SectionErrors)
	}()
	go func() {
		defer wg.Done()
		rows, err := s.source.FeatureCounts(ctx, w)
		if err != nil {
			fail(domain.SectionFeatures, err)
			return
		}
		m.Features = summarizeFeatures(rows)
		ok(domain.SectionFeatures)
	}()
	go func() {
		defer wg.Done()
		counts, err := s.source.FunnelCounts(ctx, w)
		if err != nil {
			fail(domain.SectionFunnel, err)
			return
		}
		m.Funnel = normalizeFunnel(counts)
		ok(domain.SectionFunnel)
	}()
	go func() {
		defer wg.Done()
		rows, err := s.source.AIInvocations(ctx, w)
		if err != nil {
			fail(domain.SectionTokens, err)
			return
		}
		m.Tokens = s.SummarizeTokenUsage(rows)
		ok(domain.SectionTokens)
	}()
	wg.Wait()

	// Behavior depends on nothing above but shares the missing-section
	// handling, queried last to keep pool pressure bounded.
	if b, err := s.source.BehaviorStats(ctx, w); err != nil {
		fail(domain.SectionBehavior, err)
	} else {
		m.Behavior = b
		ok(domain.SectionBehavior)
	}

	m.Missing = missing
	return m, nil
}

// AggregateWithPrevious builds metrics for the window and its equal-length
// predecessor.
func (s *Service) AggregateWithPrevious(ctx context.Context, w domain.Window) (cur, prev *domain.PeriodMetrics, err error) {
	cur, err = s.Aggregate(ctx, w)
	if err != nil {
		return nil, nil, err
	}
	prev, err = s.Aggregate(ctx, w.Previous())
	if err != nil {
		return nil, nil, err
	}
	return cur, prev, nil
}

func summarizePayments(rows []domain.PaymentDayRow) domain.PaymentSummary {
	sum := domain.PaymentSummary{ByDay: make(map[string]domain.DayStat)}
	for _, r := range rows {
		if r.Count == 0 {
			continue
		}
		sum.Total += r.Count
		sum.Revenue += r.Revenue
		sum.ByDay[r.Day] = domain.DayStat{Count: r.Count, Revenue: r.Revenue}
	}
	if sum.Total > 0 {
		sum.AvgCheck = math.Round(sum.Revenue / float64(sum.Total))
	}
	return sum
}

func summarizeFeatures(rows []domain.FeatureUsageRow) domain.FeatureSummary {
	sum := domain.FeatureSummary{}
	for _, r := range rows {
		switch r.FeatureName {
		case "ocr_upload":
			sum.OCR += r.TotalUsage
		case "ai_analysis":
			sum.AI += r.TotalUsage
		}
	}
	if len(rows) > 5 {
		rows = rows[:5]
	}
	sum.Top = rows
	return sum
}

// normalizeFunnel converts raw stage counts to the fixed 8-stage funnel with
// conversion rates. Stages are independent session predicates, so a later
// stage exceeding an earlier one produces rates above 100.
func normalizeFunnel(c domain.FunnelCounts) domain.FunnelSummary {
	stages := []domain.FunnelStage{
		{Name: "landing", Count: c.Landing},
		{Name: "viewed_info", Count: c.ViewedInfo},
		{Name: "uploaded_analysis", Count: c.UploadedAnalysis},
		{Name: "viewed_results", Count: c.ViewedResults},
		{Name: "clicked_payment", Count: c.ClickedPayment},
		{Name: "payment_page_opened", Count: c.PaymentPageOpened},
		{Name: "payment_completed", Count: c.PaymentCompleted},
		{Name: "returning_users", Count: c.ReturningUsers},
	}
	for i := range stages {
		stages[i].FromLanding = rate(stages[i].Count, c.Landing)
		if i == 0 {
			stages[i].FromPrevious = rate(stages[i].Count, c.Landing)
			continue
		}
		stages[i].FromPrevious = rate(stages[i].Count, stages[i-1].Count)
	}
	return domain.FunnelSummary{Stages: stages}
}

// rate is a percentage with two decimals; division by zero yields 0.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
