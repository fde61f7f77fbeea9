package domain

import "time"

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment represents one recorded payment. Rows are immutable once recorded;
// only status = succeeded counts toward revenue metrics.
type Payment struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	UserID      string        `json:"user_id" gorm:"index"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status" gorm:"index"`
	Provider    string        `json:"provider,omitempty"`
	ProviderID  string        `json:"provider_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" gorm:"index"`
}

func (Payment) TableName() string { return "payments" }

// Session represents one user visit, immutable.
type Session struct {
	SessionID              string    `json:"session_id" gorm:"primaryKey;column:session_id"`
	UserID                 string    `json:"user_id" gorm:"index"`
	CreatedAt              time.Time `json:"created_at" gorm:"index"`
	DeviceType             string    `json:"device_type"`
	PageViews              int       `json:"page_views"`
	AnalysesUploaded       int       `json:"analyses_uploaded"`
	PaymentTriggered       bool      `json:"payment_triggered"`
	PaymentCompleted       bool      `json:"payment_completed"`
	ReturningUser          bool      `json:"returning_user"`
	UTMSource              string    `json:"utm_source,omitempty" gorm:"column:utm_source"`
	UTMMedium              string    `json:"utm_medium,omitempty" gorm:"column:utm_medium"`
	UTMCampaign            string    `json:"utm_campaign,omitempty" gorm:"column:utm_campaign"`
	ReferralSource         string    `json:"referral_source,omitempty"`
	SessionDurationSeconds int       `json:"session_duration_seconds"`
}

func (Session) TableName() string { return "user_sessions" }

// FeatureUsageEvent is an aggregated feature usage record, not per-click.
type FeatureUsageEvent struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	FeatureName     string    `json:"feature_name" gorm:"index"`
	FeatureCategory string    `json:"feature_category"`
	UserID          string    `json:"user_id" gorm:"index"`
	UsageCount      int       `json:"usage_count"`
	Success         bool      `json:"success"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

func (FeatureUsageEvent) TableName() string { return "feature_usage" }

// ErrorEvent is one recorded backend error. The original system scraped these
// from process logs; the backend now persists them so the reporting core can
// query them like any other metric.
type ErrorEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Source    string    `json:"source" gorm:"index"` // e.g. "webhook", "ocr", "api"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (ErrorEvent) TableName() string { return "error_events" }
