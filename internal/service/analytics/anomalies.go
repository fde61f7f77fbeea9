package analytics

import (
	"fmt"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
)

// DetectAnomalies flags irregularities that threshold alerts do not cover.
// It needs both periods; with no prior data every heuristic stays silent.
func DetectAnomalies(cur, prev *domain.PeriodMetrics) []domain.Anomaly {
	if prev.Empty() {
		return nil
	}

	var out []domain.Anomaly

	if prev.Payments.Total > 0 && cur.Payments.Total == 0 {
		out = append(out, domain.Anomaly{
			Type:     "payments_stopped",
			Severity: "high",
			Message:  fmt.Sprintf("No payments this period after %d in the previous one", prev.Payments.Total),
		})
	}

	if prev.Payments.Revenue > 0 && cur.Payments.Revenue < prev.Payments.Revenue*0.5 && cur.Payments.Total > 0 {
		out = append(out, domain.Anomaly{
			Type:     "revenue_collapse",
			Severity: "high",
			Message:  fmt.Sprintf("Revenue fell more than 50%%: %.2f vs %.2f", cur.Payments.Revenue, prev.Payments.Revenue),
		})
	}

	if cur.Errors.Total > 10 && cur.Errors.Total > prev.Errors.Total*3 {
		out = append(out, domain.Anomaly{
			Type:     "error_spike",
			Severity: "medium",
			Message:  fmt.Sprintf("Errors tripled: %d vs %d", cur.Errors.Total, prev.Errors.Total),
		})
	}

	if prev.Payments.AvgCheck > 0 && cur.Payments.AvgCheck > 0 &&
		cur.Payments.AvgCheck < prev.Payments.AvgCheck*0.7 {
		out = append(out, domain.Anomaly{
			Type:     "avg_check_drop",
			Severity: "medium",
			Message:  fmt.Sprintf("Average check dropped over 30%%: %.0f vs %.0f", cur.Payments.AvgCheck, prev.Payments.AvgCheck),
		})
	}

	if prev.Tokens.TotalCostUSD > 0 && cur.Tokens.TotalCostUSD > prev.Tokens.TotalCostUSD*2.5 {
		out = append(out, domain.Anomaly{
			Type:     "ai_cost_spike",
			Severity: "low",
			Message:  fmt.Sprintf("AI spend grew over 150%%: $%.2f vs $%.2f", cur.Tokens.TotalCostUSD, prev.Tokens.TotalCostUSD),
		})
	}

	return out
}
