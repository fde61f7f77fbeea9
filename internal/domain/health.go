package domain

// Health grade bands by overall score.
const (
	HealthGradeExcellent = "excellent" // >= 80
	HealthGradeGood      = "good"      // 60..79
	HealthGradeFair      = "fair"      // 40..59
	HealthGradePoor      = "poor"      // < 40
)

// Health component names used as Breakdown keys.
const (
	HealthComponentActivation = "activation"
	HealthComponentRetention  = "retention"
	HealthComponentRevenue    = "revenue"
	HealthComponentQuality    = "quality"
)

// HealthScore is the weighted 0..100 business health summary for a period.
// Breakdown holds the raw (unweighted) per-component scores; components whose
// inputs were unavailable are absent from the map.
type HealthScore struct {
	Overall   int            `json:"overall"`
	Breakdown map[string]int `json:"breakdown"`
	Grade     string         `json:"grade"`
	Status    string         `json:"status"`
}

// GradeFor maps an overall score to its grade band.
func GradeFor(overall int) string {
	switch {
	case overall >= 80:
		return HealthGradeExcellent
	case overall >= 60:
		return HealthGradeGood
	case overall >= 40:
		return HealthGradeFair
	default:
		return HealthGradePoor
	}
}
