package domain

import "time"

// ChurnThresholdDays is the number of days without a purchase after which a
// customer is classified as churned. The comparison is strict: exactly 90
// days is still active.
const ChurnThresholdDays = 90

// CustomerLifetimeRecord is the persisted per-customer rollup, keyed by
// user_id and recomputed in full from payment and session history on every
// refresh. It is never patched incrementally.
// Invariant: IsActive == !IsChurned; IsChurned <=> DaysSinceLastPurchase > 90.
type CustomerLifetimeRecord struct {
	UserID                string     `json:"user_id" gorm:"primaryKey;column:user_id"`
	TotalRevenue          float64    `json:"total_revenue"`
	TotalTransactions     int        `json:"total_transactions"`
	AverageOrderValue     float64    `json:"average_order_value"`
	FirstPurchaseDate     time.Time  `json:"first_purchase_date"`
	LastPurchaseDate      time.Time  `json:"last_purchase_date"`
	CustomerLifetimeDays  int        `json:"customer_lifetime_days"`
	TotalSessions         int        `json:"total_sessions"`
	TotalAnalyses         int        `json:"total_analyses"`
	SessionsWithPurchase  int        `json:"sessions_with_purchase"`
	LTV30Days             float64    `json:"ltv_30_days" gorm:"column:ltv_30_days"`
	LTV90Days             float64    `json:"ltv_90_days" gorm:"column:ltv_90_days"`
	LTV365Days            float64    `json:"ltv_365_days" gorm:"column:ltv_365_days"`
	PredictedLTV          float64    `json:"predicted_ltv" gorm:"column:predicted_ltv"`
	CohortMonth           string     `json:"cohort_month" gorm:"index"` // YYYY-MM
	CohortWeek            string     `json:"cohort_week"`               // YYYY-MM-DD, see service docs
	IsActive              bool       `json:"is_active"`
	IsChurned             bool       `json:"is_churned" gorm:"index"`
	ChurnDate             *time.Time `json:"churn_date,omitempty"`
	DaysSinceLastPurchase float64    `json:"days_since_last_purchase"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (CustomerLifetimeRecord) TableName() string { return "customer_lifetime_value" }

// UserPaymentStats are the per-user aggregates over succeeded payments that
// feed a lifetime-record refresh.
type UserPaymentStats struct {
	TotalTransactions int        `json:"total_transactions"`
	TotalRevenue      float64    `json:"total_revenue"`
	AverageOrderValue float64    `json:"average_order_value"`
	FirstPurchaseDate *time.Time `json:"first_purchase_date"`
	LastPurchaseDate  *time.Time `json:"last_purchase_date"`
}

// UserSessionStats are the per-user session aggregates.
type UserSessionStats struct {
	TotalSessions        int `json:"total_sessions"`
	TotalAnalyses        int `json:"total_analyses"`
	SessionsWithPurchase int `json:"sessions_with_purchase"`
}

// ChurnStats summarizes churn over a set of customers.
type ChurnStats struct {
	TotalCustomers       int     `json:"total_customers"`
	ChurnedCustomers     int     `json:"churned_customers"`
	ChurnRate            float64 `json:"churn_rate"` // percentage, 2 decimals
	AvgDaysSincePurchase float64 `json:"avg_days_since_purchase"`
	AvgRevenueActive     float64 `json:"avg_revenue_active"`
	AvgRevenueChurned    float64 `json:"avg_revenue_churned"`
}

// CohortChurn is the churn rollup for one first-purchase-month cohort.
type CohortChurn struct {
	CohortMonth     string  `json:"cohort_month"`
	CohortSize      int     `json:"cohort_size"`
	Churned         int     `json:"churned"`
	ChurnRate       float64 `json:"churn_rate"`
	AvgLTV          float64 `json:"avg_ltv" gorm:"column:avg_ltv"`
	AvgLifetimeDays float64 `json:"avg_lifetime_days"`
}

// CohortLTV is the revenue rollup for one cohort.
type CohortLTV struct {
	CohortMonth      string  `json:"cohort_month"`
	CohortSize       int     `json:"cohort_size"`
	TotalRevenue     float64 `json:"total_revenue"`
	AvgLTV           float64 `json:"avg_ltv" gorm:"column:avg_ltv"`
	AvgTransactions  float64 `json:"avg_transactions"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	ActiveCustomers  int     `json:"active_customers"`
	ChurnedCustomers int     `json:"churned_customers"`
	ChurnRate        float64 `json:"churn_rate"`
}

// AOVPoint is one period of the average-order-value trend.
type AOVPoint struct {
	Period       string  `json:"period"`
	Transactions int     `json:"transactions"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgOrder     float64 `json:"average_order_value" gorm:"column:average_order_value"`
	MinOrder     float64 `json:"min_order"`
	MaxOrder     float64 `json:"max_order"`
}
