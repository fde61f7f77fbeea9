package domain

// Severity tiers a finding. Tier order (critical, warning, opportunity) is
// fixed for rendering; order inside a tier is not significant.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityWarning     Severity = "warning"
	SeverityOpportunity Severity = "opportunity"
)

// Finding is one triggered alert rule.
type Finding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Impact   string   `json:"impact"`
	Action   string   `json:"action"`
}

// AlertSet groups findings by severity tier.
type AlertSet struct {
	Critical    []Finding `json:"critical"`
	Warning     []Finding `json:"warning"`
	Opportunity []Finding `json:"opportunity"`
}

// NeedsImmediateAttention reports whether the alert set warrants an
// out-of-schedule notification.
func (a *AlertSet) NeedsImmediateAttention() bool {
	return a != nil && len(a.Critical) > 0
}

// Total returns the number of findings across all tiers.
func (a *AlertSet) Total() int {
	if a == nil {
		return 0
	}
	return len(a.Critical) + len(a.Warning) + len(a.Opportunity)
}

// Anomaly is a heuristic irregularity detected in period data, distinct from
// threshold-rule findings.
type Anomaly struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // high, medium, low
	Message  string `json:"message"`
}
