// Package health computes the weighted product health score.
package health

import (
	"math"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

// Component weights, summing to 100.
const (
	weightActivation = 30
	weightRetention  = 30
	weightRevenue    = 25
	weightQuality    = 15
)

type Service struct {
	goals config.GoalsConfig
	log   *zap.Logger
}

func NewService(goals config.GoalsConfig, log *zap.Logger) *Service {
	return &Service{goals: goals, log: log}
}

// Score combines the activation, retention, revenue and quality sub-scores
// into one weighted 0..100 composite.
//
// Missing-input policy: a sub-score whose inputs were not observed (section
// marked missing by the aggregator) is excluded and the remaining weights
// are renormalized. With every input missing the score is nil.
func (s *Service) Score(m *domain.PeriodMetrics) *domain.HealthScore {
	missing := make(map[string]bool, len(m.Missing))
	for _, sec := range m.Missing {
		missing[sec] = true
	}

	type component struct {
		name   string
		weight int
		score  int
		ok     bool
	}
	components := []component{
		{name: domain.HealthComponentActivation, weight: weightActivation},
		{name: domain.HealthComponentRetention, weight: weightRetention},
		{name: domain.HealthComponentRevenue, weight: weightRevenue},
		{name: domain.HealthComponentQuality, weight: weightQuality},
	}

	if !missing[domain.SectionFunnel] {
		components[0].score = s.activation(m)
		components[0].ok = true
	}
	if !missing[domain.SectionBehavior] {
		components[1].score = s.retention(m)
		components[1].ok = true
	}
	if !missing[domain.SectionPayments] {
		components[2].score = s.revenue(m)
		components[2].ok = true
	}
	if !missing[domain.SectionErrors] && !missing[domain.SectionPayments] {
		components[3].score = s.quality(m)
		components[3].ok = true
	}

	totalWeight := 0
	weighted := 0.0
	breakdown := make(map[string]int)
	for _, c := range components {
		if !c.ok {
			continue
		}
		totalWeight += c.weight
		weighted += float64(c.score) * float64(c.weight)
		breakdown[c.name] = c.score
	}
	if totalWeight == 0 {
		s.log.Warn("Health score unavailable, every input missing")
		return nil
	}

	overall := int(math.Round(weighted / float64(totalWeight)))
	grade := domain.GradeFor(overall)
	return &domain.HealthScore{
		Overall:   overall,
		Breakdown: breakdown,
		Grade:     grade,
		Status:    statusFor(grade),
	}
}

// activation scores the landing-to-upload conversion against its target.
func (s *Service) activation(m *domain.PeriodMetrics) int {
	var landing, uploaded int
	for _, st := range m.Funnel.Stages {
		switch st.Name {
		case "landing":
			landing = st.Count
		case "uploaded_analysis":
			uploaded = st.Count
		}
	}
	if landing == 0 {
		return 0
	}
	actual := float64(uploaded) / float64(landing) * 100
	return normalize(actual, s.goals.ActivationTarget)
}

// retention scores the returning-user share against its target.
func (s *Service) retention(m *domain.PeriodMetrics) int {
	if m.Behavior.TotalUsers == 0 {
		return 0
	}
	actual := float64(m.Behavior.ReturningUsers) / float64(m.Behavior.TotalUsers) * 100
	return normalize(actual, s.goals.RetentionTarget)
}

// revenue scores the linear monthly projection against the monthly goal.
func (s *Service) revenue(m *domain.PeriodMetrics) int {
	projection := m.Payments.Revenue / m.Window.Days() * 30
	return normalize(projection, s.goals.MonthlyRevenue)
}

// quality scores the error rate: 100 at zero errors, 0 at or beyond the
// configured maximum rate.
func (s *Service) quality(m *domain.PeriodMetrics) int {
	if m.Payments.Total == 0 {
		if m.Errors.Total == 0 {
			return 100
		}
		return 0
	}
	errorRate := float64(m.Errors.Total) / float64(m.Payments.Total) * 100
	if s.goals.ErrorRateMax <= 0 {
		return 100
	}
	score := 100 - errorRate/s.goals.ErrorRateMax*100
	return clamp(int(math.Round(score)))
}

// normalize maps actual/target to 0..100, capped at 100.
func normalize(actual, target float64) int {
	if target <= 0 {
		return 0
	}
	return clamp(int(math.Round(actual / target * 100)))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func statusFor(grade string) string {
	switch grade {
	case domain.HealthGradeExcellent:
		return "Продукт в отличном состоянии"
	case domain.HealthGradeGood:
		return "Продукт работает хорошо, есть потенциал"
	case domain.HealthGradeFair:
		return "Требуются улучшения"
	default:
		return "Критическое состояние"
	}
}
