package domain

import "time"

// AIInvocationStatus mirrors the backend's analysis status values.
const AIInvocationStatusSuccess = "success"

// AIInvocation is one AI model call recorded by the backend.
// Invariant: TotalTokens = PromptTokens + CompletionTokens.
type AIInvocation struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"index"`
	AIModel          string     `json:"ai_model" gorm:"column:ai_model;index"`
	PromptTokens     int        `json:"prompt_tokens"`
	CompletionTokens int        `json:"completion_tokens"`
	TotalTokens      int        `json:"total_tokens"`
	AICostUSD        *float64   `json:"ai_cost_usd,omitempty" gorm:"column:ai_cost_usd"`
	AITimeMs         float64    `json:"ai_time_ms" gorm:"column:ai_time_ms"`
	Status           string     `json:"status" gorm:"index"`
	AnalysisType     string     `json:"analysis_type"`
	CreatedAt        time.Time  `json:"created_at" gorm:"index"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (AIInvocation) TableName() string { return "ai_invocations" }
