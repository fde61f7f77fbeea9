package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/observability/telemetry"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
)

// testUserPattern excludes internal and smoke-test traffic from every
// metric query.
const testUserPattern = "test%"

type MetricSource struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewMetricSource(db *gorm.DB, log *zap.Logger) ports.MetricSource {
	return &MetricSource{db: db, log: log}
}

func (s *MetricSource) Available(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (s *MetricSource) PaymentsByDay(ctx context.Context, w domain.Window) ([]domain.PaymentDayRow, error) {
	defer observe(time.Now())
	var rows []domain.PaymentDayRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT to_char(completed_at, 'YYYY-MM-DD') AS day,
		       COUNT(*) AS count,
		       COALESCE(SUM(amount), 0) AS revenue
		FROM payments
		WHERE status = ?
		  AND completed_at >= ? AND completed_at < ?
		  AND user_id NOT LIKE ?
		GROUP BY 1
		ORDER BY 1`,
		domain.PaymentStatusSucceeded, w.From, w.To, testUserPattern,
	).Scan(&rows).Error
	return rows, err
}

func (s *MetricSource) ErrorCounts(ctx context.Context, w domain.Window) (domain.ErrorSummary, error) {
	defer observe(time.Now())
	var sum domain.ErrorSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE source = 'webhook') AS webhook
		FROM error_events
		WHERE created_at >= ? AND created_at < ?`,
		w.From, w.To,
	).Scan(&sum).Error
	return sum, err
}

func (s *MetricSource) FeatureCounts(ctx context.Context, w domain.Window) ([]domain.FeatureUsageRow, error) {
	defer observe(time.Now())
	var rows []domain.FeatureUsageRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT feature_name,
		       feature_category,
		       COALESCE(SUM(usage_count), 0) AS total_usage,
		       COUNT(DISTINCT user_id) AS unique_users,
		       ROUND(AVG(CASE WHEN success THEN 100.0 ELSE 0 END), 2) AS success_rate
		FROM feature_usage
		WHERE created_at >= ? AND created_at < ?
		  AND user_id NOT LIKE ?
		GROUP BY feature_name, feature_category
		ORDER BY total_usage DESC`,
		w.From, w.To, testUserPattern,
	).Scan(&rows).Error
	return rows, err
}

func (s *MetricSource) FunnelCounts(ctx context.Context, w domain.Window) (domain.FunnelCounts, error) {
	defer observe(time.Now())
	var c domain.FunnelCounts
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS landing,
		       COUNT(*) FILTER (WHERE page_views >= 2) AS viewed_info,
		       COUNT(*) FILTER (WHERE analyses_uploaded > 0) AS uploaded_analysis,
		       COUNT(*) FILTER (WHERE analyses_uploaded > 0 AND page_views > 3) AS viewed_results,
		       COUNT(*) FILTER (WHERE payment_triggered) AS clicked_payment,
		       COUNT(*) FILTER (WHERE payment_triggered) AS payment_page_opened,
		       COUNT(*) FILTER (WHERE payment_completed) AS payment_completed,
		       COUNT(*) FILTER (WHERE returning_user) AS returning_users
		FROM user_sessions
		WHERE created_at >= ? AND created_at < ?
		  AND user_id NOT LIKE ?`,
		w.From, w.To, testUserPattern,
	).Scan(&c).Error
	return c, err
}

func (s *MetricSource) AIInvocations(ctx context.Context, w domain.Window) ([]domain.AIInvocationRow, error) {
	defer observe(time.Now())
	var rows []domain.AIInvocationRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT ai_model,
		       COALESCE(prompt_tokens, 0) AS prompt_tokens,
		       COALESCE(completion_tokens, 0) AS completion_tokens,
		       COALESCE(ai_time_ms, 0) AS ai_time_ms,
		       analysis_type
		FROM ai_invocations
		WHERE status = ?
		  AND created_at >= ? AND created_at < ?
		  AND user_id NOT LIKE ?`,
		domain.AIInvocationStatusSuccess, w.From, w.To, testUserPattern,
	).Scan(&rows).Error
	return rows, err
}

func (s *MetricSource) BehaviorStats(ctx context.Context, w domain.Window) (domain.BehaviorSummary, error) {
	defer observe(time.Now())
	var b domain.BehaviorSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT user_id) AS total_users,
		       COUNT(DISTINCT user_id) FILTER (WHERE NOT returning_user) AS new_users,
		       COUNT(DISTINCT user_id) FILTER (WHERE returning_user) AS returning_users,
		       COALESCE(ROUND(AVG(session_duration_seconds), 2), 0) AS avg_session_duration,
		       COALESCE(ROUND(AVG(page_views), 2), 0) AS avg_page_views,
		       COALESCE(ROUND(AVG(analyses_uploaded), 2), 0) AS avg_analyses
		FROM user_sessions
		WHERE created_at >= ? AND created_at < ?
		  AND user_id NOT LIKE ?`,
		w.From, w.To, testUserPattern,
	).Scan(&b).Error
	return b, err
}

func observe(start time.Time) {
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
}
