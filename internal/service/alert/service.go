// Package alert evaluates business rules against a composed report and
// groups findings by severity.
package alert

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/observability/telemetry"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

type Service struct {
	goals config.GoalsConfig
	log   *zap.Logger
}

func NewService(goals config.GoalsConfig, log *zap.Logger) *Service {
	return &Service{goals: goals, log: log}
}

// Evaluate runs every rule over the current period and its comparison.
// Comparison-based rules stay silent when cmp is nil.
func (s *Service) Evaluate(cur *domain.PeriodMetrics, cmp *domain.Comparison) *domain.AlertSet {
	set := &domain.AlertSet{}
	s.critical(cur, cmp, set)
	s.warning(cur, cmp, set)
	s.opportunity(cur, cmp, set)

	telemetry.AlertsRaisedTotal.WithLabelValues("critical").Add(float64(len(set.Critical)))
	telemetry.AlertsRaisedTotal.WithLabelValues("warning").Add(float64(len(set.Warning)))
	telemetry.AlertsRaisedTotal.WithLabelValues("opportunity").Add(float64(len(set.Opportunity)))

	if set.NeedsImmediateAttention() {
		s.log.Warn("Critical alerts raised", zap.Int("count", len(set.Critical)))
	}
	return set
}

func (s *Service) critical(cur *domain.PeriodMetrics, cmp *domain.Comparison, set *domain.AlertSet) {
	p := cur.Payments
	e := cur.Errors

	if cmp != nil && cmp.Payments.Revenue.Percent < -20 {
		set.Critical = append(set.Critical, domain.Finding{
			Type:     "revenue_drop",
			Severity: domain.SeverityCritical,
			Title:    "Критическое падение выручки",
			Message:  fmt.Sprintf("Выручка упала на %d%% за период", -cmp.Payments.Revenue.Percent),
			Impact:   fmt.Sprintf("Потеряно %.0f₽", math.Abs(cmp.Payments.Revenue.Absolute)),
			Action:   "Срочно проверить webhook ошибки и маркетинговые каналы",
		})
	}

	if e.Total > 50 {
		errorRate := 0
		if p.Total > 0 {
			errorRate = int(math.Round(float64(e.Total) / float64(p.Total) * 100))
		}
		set.Critical = append(set.Critical, domain.Finding{
			Type:     "high_errors",
			Severity: domain.SeverityCritical,
			Title:    "Критический уровень ошибок",
			Message:  fmt.Sprintf("%d ошибок (%d%% от транзакций)", e.Total, errorRate),
			Impact:   fmt.Sprintf("Потенциально блокирует ~%d транзакций", int(math.Round(float64(e.Total)*0.3))),
			Action:   "Проверить логи и исправить webhook интеграцию",
		})
	}

	if float64(e.Webhook) > float64(p.Total)*0.5 && e.Webhook > 0 {
		set.Critical = append(set.Critical, domain.Finding{
			Type:     "webhook_blocking",
			Severity: domain.SeverityCritical,
			Title:    "Webhook блокируют платежи",
			Message:  fmt.Sprintf("%d webhook ошибок при %d платежах", e.Webhook, p.Total),
			Impact:   fmt.Sprintf("Теряем ~%.0f₽ за период", float64(e.Webhook)*p.AvgCheck*0.5),
			Action:   "НЕМЕДЛЕННО исправить webhook интеграцию",
		})
	}

	if p.Total > 50 && adoption(cur.Features.AI, p.Total) < 5 {
		set.Critical = append(set.Critical, domain.Finding{
			Type:     "low_ai_adoption",
			Severity: domain.SeverityCritical,
			Title:    "Критически низкий AI adoption",
			Message:  fmt.Sprintf("Только %d%% пользователей используют AI анализ", adoption(cur.Features.AI, p.Total)),
			Impact:   "Пользователи не получают ключевую ценность продукта",
			Action:   "Проверить onboarding и доступность AI функции",
		})
	}
}

func (s *Service) warning(cur *domain.PeriodMetrics, cmp *domain.Comparison, set *domain.AlertSet) {
	p := cur.Payments
	e := cur.Errors

	if cmp != nil && cmp.Payments.Revenue.Trend != domain.TrendUp {
		set.Warning = append(set.Warning, domain.Finding{
			Type:     "revenue_stagnation",
			Severity: domain.SeverityWarning,
			Title:    "Выручка не растет",
			Message:  fmt.Sprintf("%.0f₽ (%+d%% к прошлому периоду)", p.Revenue, cmp.Payments.Revenue.Percent),
			Impact:   fmt.Sprintf("Цель %.0f₽/неделю под угрозой", s.goals.WeeklyRevenue),
			Action:   "Пересмотреть маркетинговую активность",
		})
	}

	if cmp != nil && cmp.Payments.Total.Percent < -10 {
		set.Warning = append(set.Warning, domain.Finding{
			Type:     "payments_decline",
			Severity: domain.SeverityWarning,
			Title:    "Падение количества платежей",
			Message:  fmt.Sprintf("%d платежей (%d%% к прошлому периоду)", p.Total, cmp.Payments.Total.Percent),
			Impact:   "Уменьшение активной пользовательской базы",
			Action:   "Проверить acquisition каналы и retention",
		})
	}

	if gap := s.goals.AvgCheckTarget - p.AvgCheck; gap > s.goals.AvgCheckWarnGap && p.AvgCheck > 0 {
		set.Warning = append(set.Warning, domain.Finding{
			Type:     "low_avg_check",
			Severity: domain.SeverityWarning,
			Title:    "Средний чек ниже цели",
			Message:  fmt.Sprintf("%.0f₽ (цель: %.0f₽)", p.AvgCheck, s.goals.AvgCheckTarget),
			Impact:   fmt.Sprintf("Потенциал роста revenue на %d%%", int(math.Round(gap/p.AvgCheck*100))),
			Action:   "A/B тест повышения цены или upsell",
		})
	}

	if ocr := adoption(cur.Features.OCR, p.Total); float64(ocr) < s.goals.OCRAdoptionTarget && p.Total > 0 {
		set.Warning = append(set.Warning, domain.Finding{
			Type:     "low_ocr_adoption",
			Severity: domain.SeverityWarning,
			Title:    "Низкий OCR adoption",
			Message:  fmt.Sprintf("%d%% (цель: %.0f%%)", ocr, s.goals.OCRAdoptionTarget),
			Impact:   "Барьер для пользователей, влияет на retention",
			Action:   "Упростить UX загрузки фото, добавить onboarding",
		})
	}

	if cmp != nil && cmp.Errors.Total.Percent > 20 {
		set.Warning = append(set.Warning, domain.Finding{
			Type:     "errors_growth",
			Severity: domain.SeverityWarning,
			Title:    "Рост ошибок",
			Message:  fmt.Sprintf("%d ошибок (+%d%% к прошлому периоду)", e.Total, cmp.Errors.Total.Percent),
			Impact:   "Ухудшение user experience",
			Action:   "Мониторить логи и устранить основные причины",
		})
	}
}

func (s *Service) opportunity(cur *domain.PeriodMetrics, cmp *domain.Comparison, set *domain.AlertSet) {
	p := cur.Payments
	e := cur.Errors

	if cmp != nil && cmp.Payments.Revenue.Percent > 50 {
		set.Opportunity = append(set.Opportunity, domain.Finding{
			Type:     "revenue_surge",
			Severity: domain.SeverityOpportunity,
			Title:    "Сильный рост выручки!",
			Message:  fmt.Sprintf("+%d%% к прошлому периоду", cmp.Payments.Revenue.Percent),
			Impact:   fmt.Sprintf("+%.0f₽ за период", cmp.Payments.Revenue.Absolute),
			Action:   "Проанализировать: что сработало? Масштабировать успешные каналы",
		})
	}

	if cmp != nil && cmp.Payments.AvgCheck.Percent > 15 {
		set.Opportunity = append(set.Opportunity, domain.Finding{
			Type:     "avgcheck_growth",
			Severity: domain.SeverityOpportunity,
			Title:    "Рост среднего чека",
			Message:  fmt.Sprintf("%.0f₽ (+%d%% к прошлому периоду)", p.AvgCheck, cmp.Payments.AvgCheck.Percent),
			Impact:   "Улучшение монетизации",
			Action:   "Что изменилось? Продолжить в том же направлении",
		})
	}

	if ai := adoption(cur.Features.AI, p.Total); float64(ai) > s.goals.AIAdoptionTarget && p.Total > 0 {
		set.Opportunity = append(set.Opportunity, domain.Finding{
			Type:     "high_ai_adoption",
			Severity: domain.SeverityOpportunity,
			Title:    "Отличный AI adoption!",
			Message:  fmt.Sprintf("%d%% пользователей используют AI", ai),
			Impact:   "Высокая вовлеченность в ключевую фичу",
			Action:   "Собрать feedback и улучшать AI дальше",
		})
	}

	if cmp != nil && cmp.Errors.Total.Percent < -30 {
		set.Opportunity = append(set.Opportunity, domain.Finding{
			Type:     "errors_decrease",
			Severity: domain.SeverityOpportunity,
			Title:    "Снижение ошибок",
			Message:  fmt.Sprintf("%d ошибок (%d%% к прошлому периоду)", e.Total, cmp.Errors.Total.Percent),
			Impact:   "Улучшение стабильности системы",
			Action:   "Отлично! Продолжить мониторинг",
		})
	}

	if p.Revenue >= s.goals.WeeklyRevenue && s.goals.WeeklyRevenue > 0 {
		set.Opportunity = append(set.Opportunity, domain.Finding{
			Type:     "revenue_goal_achieved",
			Severity: domain.SeverityOpportunity,
			Title:    "Цель по выручке достигнута!",
			Message:  fmt.Sprintf("%.0f₽ (%d%% от цели)", p.Revenue, int(math.Round(p.Revenue/s.goals.WeeklyRevenue*100))),
			Impact:   "Отличная работа!",
			Action:   fmt.Sprintf("Повысить планку: новая цель %.0f₽/неделю", math.Round(s.goals.WeeklyRevenue*1.2)),
		})
	}
}

// adoption is the share of payments that used a feature, in whole percent.
func adoption(usage, payments int) int {
	if payments == 0 {
		return 0
	}
	return int(math.Round(float64(usage) / float64(payments) * 100))
}
