package analytics

import (
	"math"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

// trendDeadBandPercent is the band within which a change counts as stable.
const trendDeadBandPercent = 5

// Compare computes the period-over-period delta for one metric.
//
// A zero previous value is treated as 100% growth when the current value is
// positive, and a fully stable zero delta otherwise.
func Compare(current, previous float64) domain.Delta {
	if previous == 0 {
		d := domain.Delta{Absolute: current, Trend: domain.TrendStable}
		if current > 0 {
			d.Percent = 100
			d.Trend = domain.TrendUp
		}
		d.Emoji = trendEmoji(d.Trend)
		return d
	}

	abs := current - previous
	pct := int(math.Round(abs / previous * 100))
	trend := domain.TrendStable
	switch {
	case pct > trendDeadBandPercent:
		trend = domain.TrendUp
	case pct < -trendDeadBandPercent:
		trend = domain.TrendDown
	}
	return domain.Delta{
		Absolute: abs,
		Percent:  pct,
		Trend:    trend,
		Emoji:    trendEmoji(trend),
	}
}

// ComparePeriods builds the full comparison block, or nil when the previous
// period has no observed activity to compare against.
func ComparePeriods(cur, prev *domain.PeriodMetrics) *domain.Comparison {
	if prev.Empty() {
		return nil
	}

	var c domain.Comparison
	c.Payments.Total = Compare(float64(cur.Payments.Total), float64(prev.Payments.Total))
	c.Payments.Revenue = Compare(cur.Payments.Revenue, prev.Payments.Revenue)
	c.Payments.AvgCheck = Compare(cur.Payments.AvgCheck, prev.Payments.AvgCheck)
	c.Errors.Total = Compare(float64(cur.Errors.Total), float64(prev.Errors.Total))
	c.Errors.Webhook = Compare(float64(cur.Errors.Webhook), float64(prev.Errors.Webhook))
	c.Features.OCR = Compare(float64(cur.Features.OCR), float64(prev.Features.OCR))
	c.Features.AI = Compare(float64(cur.Features.AI), float64(prev.Features.AI))
	return &c
}

// Forecast extrapolates window revenue linearly to a 30-day projection.
func Forecast(m *domain.PeriodMetrics, monthlyGoal float64) domain.Forecast {
	dailyAvg := m.Payments.Revenue / m.Window.Days()
	return domain.Forecast{
		DailyAvg:          math.Round(dailyAvg*100) / 100,
		MonthlyProjection: math.Round(dailyAvg*30*100) / 100,
		MonthlyGoal:       monthlyGoal,
	}
}

func trendEmoji(t domain.Trend) string {
	switch t {
	case domain.TrendUp:
		return "📈"
	case domain.TrendDown:
		return "📉"
	default:
		return "➡️"
	}
}
