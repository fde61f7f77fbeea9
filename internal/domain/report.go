package domain

import "time"

// Report section names used in PeriodMetrics.Missing markers.
const (
	SectionPayments = "payments"
	SectionErrors   = "errors"
	SectionFeatures = "features"
	SectionFunnel   = "funnel"
	SectionTokens   = "tokens"
	SectionBehavior = "behavior"
)

// PaymentDayRow is one per-day payment aggregate from the metric source.
type PaymentDayRow struct {
	Day     string  `json:"day"` // YYYY-MM-DD
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DayStat is the per-day entry of PaymentSummary.ByDay.
type DayStat struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// PaymentSummary aggregates succeeded payments over one window.
type PaymentSummary struct {
	Total    int                `json:"total"`
	Revenue  float64            `json:"revenue"`
	AvgCheck float64            `json:"avg_check"` // rounded; 0 when Total == 0
	ByDay    map[string]DayStat `json:"by_day"`    // only days with at least one payment
}

// ErrorSummary aggregates backend errors over one window.
type ErrorSummary struct {
	Total   int `json:"total"`
	Webhook int `json:"webhook"`
}

// FeatureUsageRow is one aggregated feature row from the metric source.
type FeatureUsageRow struct {
	FeatureName     string  `json:"feature_name"`
	FeatureCategory string  `json:"feature_category"`
	TotalUsage      int     `json:"total_usage"`
	UniqueUsers     int     `json:"unique_users"`
	SuccessRate     float64 `json:"success_rate"`
}

// FeatureSummary aggregates feature usage; OCR and AI are the two features
// the business goals track adoption for.
type FeatureSummary struct {
	OCR int               `json:"ocr"`
	AI  int               `json:"ai"`
	Top []FeatureUsageRow `json:"top,omitempty"`
}

// FunnelCounts are the raw per-stage session counts from the metric source.
// Stages are independent predicates over sessions, not a strictly nested
// funnel, so later counts may exceed earlier ones.
type FunnelCounts struct {
	Landing           int `json:"landing"`
	ViewedInfo        int `json:"viewed_info"`         // page_views >= 2
	UploadedAnalysis  int `json:"uploaded_analysis"`   // analyses_uploaded > 0
	ViewedResults     int `json:"viewed_results"`      // uploaded and page_views > 3
	ClickedPayment    int `json:"clicked_payment"`     // payment_triggered
	PaymentPageOpened int `json:"payment_page_opened"` // tracked identically to clicked
	PaymentCompleted  int `json:"payment_completed"`
	ReturningUsers    int `json:"returning_users"`
}

// FunnelStage is one normalized funnel stage with conversion rates relative
// to the previous stage and to the landing stage. Division by zero yields 0.
type FunnelStage struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	FromPrevious float64 `json:"from_previous"` // percent, 2 decimals
	FromLanding  float64 `json:"from_landing"`  // percent, 2 decimals
}

// FunnelSummary is the normalized 8-stage conversion funnel.
type FunnelSummary struct {
	Stages []FunnelStage `json:"stages"`
}

// AIInvocationRow is one AI call row used for token/cost aggregation.
type AIInvocationRow struct {
	AIModel          string  `json:"ai_model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	AITimeMs         float64 `json:"ai_time_ms"`
	AnalysisType     string  `json:"analysis_type"`
}

// ModelUsage aggregates AI usage for one model.
type ModelUsage struct {
	Model             string  `json:"model"`
	Requests          int     `json:"requests"`
	PromptTokens      int     `json:"prompt_tokens"`
	CompletionTokens  int     `json:"completion_tokens"`
	TotalTokens       int     `json:"total_tokens"`
	CostUSD           float64 `json:"cost_usd"`
	AvgCostPerRequest float64 `json:"avg_cost_per_request"`
	AvgTimeMs         float64 `json:"avg_time_ms"`
}

// TokenUsageSummary aggregates AI usage across models. Cost is summed from
// per-invocation costs, never recomputed from aggregated token counts.
type TokenUsageSummary struct {
	Models            []ModelUsage `json:"models"`
	TotalRequests     int          `json:"total_requests"`
	TotalPromptTokens int          `json:"total_prompt_tokens"`
	TotalCompletion   int          `json:"total_completion_tokens"`
	TotalTokens       int          `json:"total_tokens"`
	TotalCostUSD      float64      `json:"total_cost_usd"`
	AvgCostPerRequest float64      `json:"avg_cost_per_request"`
}

// BehaviorSummary aggregates session behavior over one window.
type BehaviorSummary struct {
	TotalUsers         int     `json:"total_users"`
	NewUsers           int     `json:"new_users"`
	ReturningUsers     int     `json:"returning_users"`
	AvgSessionDuration float64 `json:"avg_session_duration_seconds"`
	AvgPageViews       float64 `json:"avg_page_views"`
	AvgAnalyses        float64 `json:"avg_analyses_uploaded"`
}

// PeriodMetrics are the normalized summaries for one window. Sections whose
// source reported no data carry their name in Missing and a zero summary, so
// downstream arithmetic is always safe.
type PeriodMetrics struct {
	Window   Window            `json:"window"`
	Payments PaymentSummary    `json:"payments"`
	Errors   ErrorSummary      `json:"errors"`
	Features FeatureSummary    `json:"features"`
	Funnel   FunnelSummary     `json:"funnel"`
	Tokens   TokenUsageSummary `json:"tokens"`
	Behavior BehaviorSummary   `json:"behavior"`
	Missing  []string          `json:"missing,omitempty"`
}

// Empty reports whether the period carries no observed activity at all.
// Used to suppress comparisons against windows with no prior data.
func (m *PeriodMetrics) Empty() bool {
	return m == nil ||
		(m.Payments.Total == 0 && m.Errors.Total == 0 &&
			m.Features.OCR == 0 && m.Features.AI == 0 &&
			m.Tokens.TotalRequests == 0 && m.Behavior.TotalUsers == 0)
}

// Trend classifies a period-over-period delta.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Delta is one period-over-period comparison result.
type Delta struct {
	Absolute float64 `json:"absolute"`
	Percent  int     `json:"percent"`
	Trend    Trend   `json:"trend"`
	Emoji    string  `json:"emoji"`
}

// Comparison nests the deltas for every compared metric.
type Comparison struct {
	Payments struct {
		Total    Delta `json:"total"`
		Revenue  Delta `json:"revenue"`
		AvgCheck Delta `json:"avg_check"`
	} `json:"payments"`
	Errors struct {
		Total   Delta `json:"total"`
		Webhook Delta `json:"webhook"`
	} `json:"errors"`
	Features struct {
		OCR Delta `json:"ocr"`
		AI  Delta `json:"ai"`
	} `json:"features"`
}

// Forecast is the linear revenue extrapolation for the report.
type Forecast struct {
	DailyAvg          float64 `json:"daily_avg"`
	MonthlyProjection float64 `json:"monthly_projection"`
	MonthlyGoal       float64 `json:"monthly_goal"`
}

// PeriodReport is the immutable composed report for one request. Constructed
// fresh per request, discarded after rendering.
type PeriodReport struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	GeneratedAt time.Time      `json:"generated_at"`
	Current     *PeriodMetrics `json:"current"`
	Previous    *PeriodMetrics `json:"previous,omitempty"`
	Comparison  *Comparison    `json:"comparison,omitempty"` // nil when no prior data
	Alerts      *AlertSet      `json:"alerts,omitempty"`
	Anomalies   []Anomaly      `json:"anomalies,omitempty"`
	Health      *HealthScore   `json:"health,omitempty"`
	Forecast    Forecast       `json:"forecast"`
	Narrative   string         `json:"narrative,omitempty"` // empty when collaborator absent
}
