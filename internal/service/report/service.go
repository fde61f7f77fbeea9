// Package report composes period metrics, comparisons, alerts and the
// optional AI narrative into deliverable reports.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/queue"
	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/observability/telemetry"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/alert"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/analytics"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/health"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

// Period labels accepted by Generate.
const (
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
)

type Service struct {
	analytics *analytics.Service
	alerts    *alert.Service
	health    *health.Service
	narrative ports.NarrativeClient
	sender    ports.ReportSender
	cache     ports.Cache
	mq        ports.MessageQueue
	goals     config.GoalsConfig
	cacheCfg  config.CacheConfig
	breaker   *gobreaker.CircuitBreaker
	adminChat int64
	now       func() time.Time
	log       *zap.Logger
}

type Deps struct {
	Analytics *analytics.Service
	Alerts    *alert.Service
	Health    *health.Service
	Narrative ports.NarrativeClient
	Sender    ports.ReportSender
	Cache     ports.Cache
	Queue     ports.MessageQueue
}

func NewService(deps Deps, cfg *config.Config, log *zap.Logger) *Service {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "narrative",
		MaxRequests: uint32(cfg.CircuitBreaker.MaxRequests),
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.CircuitBreaker.FailureThreshold
		},
	})
	return &Service{
		analytics: deps.Analytics,
		alerts:    deps.Alerts,
		health:    deps.Health,
		narrative: deps.Narrative,
		sender:    deps.Sender,
		cache:     deps.Cache,
		mq:        deps.Queue,
		goals:     cfg.Goals,
		cacheCfg:  cfg.Cache,
		breaker:   breaker,
		adminChat: cfg.Telegram.AdminChatID,
		now:       time.Now,
		log:       log,
	}
}

// windowFor maps a period label to its reporting window.
func (s *Service) windowFor(label string) (domain.Window, error) {
	now := s.now()
	switch label {
	case PeriodWeek:
		return domain.LastDays(now, 7), nil
	case PeriodMonth:
		return domain.LastDays(now, 30), nil
	case PeriodToday:
		return domain.Today(now), nil
	case PeriodYesterday:
		return domain.Yesterday(now), nil
	default:
		return domain.Window{}, fmt.Errorf("unknown report period %q", label)
	}
}

// Generate builds the full report for a period label. The narrative is best
// effort: its failure produces a report without commentary, never an error.
func (s *Service) Generate(ctx context.Context, label string, withNarrative bool) (*domain.PeriodReport, error) {
	ctx, span := otel.Tracer("report").Start(ctx, "report.Generate")
	defer span.End()
	start := time.Now()

	w, err := s.windowFor(label)
	if err != nil {
		return nil, err
	}

	if cached := s.fromCache(ctx, label); cached != nil {
		return cached, nil
	}

	cur, prev, err := s.analytics.AggregateWithPrevious(ctx, w)
	if err != nil {
		telemetry.ReportsGeneratedTotal.WithLabelValues(label, "error").Inc()
		return nil, fmt.Errorf("aggregate %s: %w", label, err)
	}

	cmp := analytics.ComparePeriods(cur, prev)
	rep := &domain.PeriodReport{
		ID:          uuid.New().String(),
		Label:       label,
		GeneratedAt: s.now(),
		Current:     cur,
		Previous:    prev,
		Comparison:  cmp,
		Alerts:      s.alerts.Evaluate(cur, cmp),
		Anomalies:   analytics.DetectAnomalies(cur, prev),
		Health:      s.health.Score(cur),
		Forecast:    analytics.Forecast(cur, s.goals.MonthlyRevenue),
	}

	if withNarrative {
		rep.Narrative = s.generateNarrative(ctx, rep)
	}

	s.toCache(ctx, label, rep)
	s.publishGenerated(ctx, rep)

	telemetry.ReportsGeneratedTotal.WithLabelValues(label, "ok").Inc()
	telemetry.ReportGenerationDuration.Observe(time.Since(start).Seconds())
	return rep, nil
}

// Deliver renders the report and sends it to the admin chat. Critical alerts
// additionally go out on their own subject for external automation.
func (s *Service) Deliver(ctx context.Context, rep *domain.PeriodReport) error {
	if err := s.sender.Send(ctx, s.adminChat, Render(rep)); err != nil {
		return fmt.Errorf("deliver report %s: %w", rep.ID, err)
	}

	if rep.Alerts.NeedsImmediateAttention() {
		if data, err := json.Marshal(rep.Alerts.Critical); err == nil {
			if err := s.mq.Publish(ctx, queue.SubjectAlertsCritical, data); err != nil {
				s.log.Warn("Failed to publish critical alerts", zap.Error(err))
			}
		}
	}
	return nil
}

// GenerateAndDeliver is the scheduled entry point. A distributed lock keyed
// by period label and generation time keeps multiple instances from sending
// the same scheduled report twice.
func (s *Service) GenerateAndDeliver(ctx context.Context, label string) error {
	lockKey := fmt.Sprintf("report:%s:%s", label, s.now().Format("2006-01-02T15"))
	acquired, err := s.cache.TryLock(ctx, lockKey, s.cacheCfg.ReportLockTTL)
	if err != nil {
		s.log.Warn("Report lock unavailable, proceeding anyway", zap.Error(err))
	} else if !acquired {
		s.log.Info("Report already being generated elsewhere", zap.String("period", label))
		return nil
	}

	rep, err := s.Generate(ctx, label, true)
	if err != nil {
		return err
	}
	return s.Deliver(ctx, rep)
}

// Ask answers an ad-hoc question with the current week's metrics as context.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	rep, err := s.Generate(ctx, PeriodWeek, false)
	if err != nil {
		return "", err
	}

	result, err := s.complete(ctx, questionSystemPrompt, questionPrompt(rep, question))
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return result.Text, nil
}

func (s *Service) generateNarrative(ctx context.Context, rep *domain.PeriodReport) string {
	result, err := s.complete(ctx, narrativeSystemPrompt, narrativePrompt(rep))
	if err != nil {
		s.log.Warn("Narrative unavailable, sending report without commentary", zap.Error(err))
		return ""
	}
	telemetry.NarrativeTokensTotal.WithLabelValues(result.Model, "prompt").Add(float64(result.PromptTokens))
	telemetry.NarrativeTokensTotal.WithLabelValues(result.Model, "completion").Add(float64(result.CompletionTokens))
	return result.Text
}

func (s *Service) complete(ctx context.Context, system, user string) (*ports.NarrativeResult, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.narrative.Complete(ctx, system, user)
	})
	if err != nil {
		return nil, err
	}
	return out.(*ports.NarrativeResult), nil
}

func (s *Service) fromCache(ctx context.Context, label string) *domain.PeriodReport {
	var rep domain.PeriodReport
	if err := s.cache.Get(ctx, "report:"+label, &rep); err != nil {
		return nil
	}
	return &rep
}

func (s *Service) toCache(ctx context.Context, label string, rep *domain.PeriodReport) {
	ttl := s.cacheCfg.ReportTTL
	if label == PeriodToday {
		// Today's window moves with the clock, keep it fresher.
		ttl = s.cacheCfg.MetricsTTL
	}
	if err := s.cache.Set(ctx, "report:"+label, rep, ttl); err != nil {
		s.log.Warn("Failed to cache report", zap.String("period", label), zap.Error(err))
	}
}

func (s *Service) publishGenerated(ctx context.Context, rep *domain.PeriodReport) {
	event := struct {
		ID          string    `json:"id"`
		Label       string    `json:"label"`
		GeneratedAt time.Time `json:"generated_at"`
		Revenue     float64   `json:"revenue"`
		Payments    int       `json:"payments"`
		Critical    int       `json:"critical_alerts"`
	}{
		ID:          rep.ID,
		Label:       rep.Label,
		GeneratedAt: rep.GeneratedAt,
		Revenue:     rep.Current.Payments.Revenue,
		Payments:    rep.Current.Payments.Total,
		Critical:    len(rep.Alerts.Critical),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.mq.Publish(ctx, queue.SubjectReportGenerated, data); err != nil {
		s.log.Warn("Failed to publish report event", zap.Error(err))
	}
}
