package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
)

type CustomerValueRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCustomerValueRepository(db *gorm.DB, log *zap.Logger) ports.CustomerValueRepository {
	return &CustomerValueRepository{db: db, log: log}
}

func (r *CustomerValueRepository) UserPaymentStats(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
	var stats domain.UserPaymentStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total_transactions,
		       COALESCE(SUM(amount), 0) AS total_revenue,
		       COALESCE(AVG(amount), 0) AS average_order_value,
		       MIN(completed_at) AS first_purchase_date,
		       MAX(completed_at) AS last_purchase_date
		FROM payments
		WHERE user_id = ? AND status = ?`,
		userID, domain.PaymentStatusSucceeded,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *CustomerValueRepository) UserSessionStats(ctx context.Context, userID string) (*domain.UserSessionStats, error) {
	var stats domain.UserSessionStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total_sessions,
		       COALESCE(SUM(analyses_uploaded), 0) AS total_analyses,
		       COUNT(*) FILTER (WHERE payment_completed) AS sessions_with_purchase
		FROM user_sessions
		WHERE user_id = ?`,
		userID,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *CustomerValueRepository) UserRevenueSince(ctx context.Context, userID string, since time.Time) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE user_id = ? AND status = ? AND completed_at >= ?`,
		userID, domain.PaymentStatusSucceeded, since,
	).Scan(&revenue).Error
	return revenue, err
}

// Upsert inserts or fully replaces the lifetime record for one customer.
func (r *CustomerValueRepository) Upsert(ctx context.Context, rec *domain.CustomerLifetimeRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(rec).Error
}

func (r *CustomerValueRepository) PayingUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT user_id
		FROM payments
		WHERE status = ? AND user_id NOT LIKE ?`,
		domain.PaymentStatusSucceeded, testUserPattern,
	).Scan(&ids).Error
	return ids, err
}

func (r *CustomerValueRepository) Records(ctx context.Context, filter domain.QueryFilter) ([]domain.CustomerLifetimeRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&domain.CustomerLifetimeRecord{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.CohortMonth != "" {
		q = q.Where("cohort_month = ?", filter.CohortMonth)
	}
	if filter.DateFrom != "" {
		from, err := domain.ParseDate(filter.DateFrom)
		if err != nil {
			return nil, err
		}
		q = q.Where("first_purchase_date >= ?", from)
	}
	if filter.DateTo != "" {
		to, err := domain.ParseDate(filter.DateTo)
		if err != nil {
			return nil, err
		}
		q = q.Where("first_purchase_date < ?", to)
	}

	var recs []domain.CustomerLifetimeRecord
	err := q.Order("total_revenue DESC").Limit(filter.LimitOrDefault(100)).Find(&recs).Error
	return recs, err
}

func (r *CustomerValueRepository) ChurnStats(ctx context.Context) (*domain.ChurnStats, error) {
	var stats domain.ChurnStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total_customers,
		       COUNT(*) FILTER (WHERE is_churned) AS churned_customers,
		       COALESCE(ROUND(COUNT(*) FILTER (WHERE is_churned) * 100.0 / NULLIF(COUNT(*), 0), 2), 0) AS churn_rate,
		       COALESCE(ROUND(AVG(days_since_last_purchase)::numeric, 2), 0) AS avg_days_since_purchase,
		       COALESCE(ROUND(AVG(total_revenue) FILTER (WHERE is_active)::numeric, 2), 0) AS avg_revenue_active,
		       COALESCE(ROUND(AVG(total_revenue) FILTER (WHERE is_churned)::numeric, 2), 0) AS avg_revenue_churned
		FROM customer_lifetime_value`,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *CustomerValueRepository) ChurnByCohort(ctx context.Context) ([]domain.CohortChurn, error) {
	var rows []domain.CohortChurn
	err := r.db.WithContext(ctx).Raw(`
		SELECT cohort_month,
		       COUNT(*) AS cohort_size,
		       COUNT(*) FILTER (WHERE is_churned) AS churned,
		       COALESCE(ROUND(COUNT(*) FILTER (WHERE is_churned) * 100.0 / NULLIF(COUNT(*), 0), 2), 0) AS churn_rate,
		       COALESCE(ROUND(AVG(total_revenue)::numeric, 2), 0) AS avg_ltv,
		       COALESCE(ROUND(AVG(customer_lifetime_days)::numeric, 2), 0) AS avg_lifetime_days
		FROM customer_lifetime_value
		GROUP BY cohort_month
		ORDER BY cohort_month DESC
		LIMIT 12`,
	).Scan(&rows).Error
	return rows, err
}

func (r *CustomerValueRepository) CohortLTV(ctx context.Context) ([]domain.CohortLTV, error) {
	var rows []domain.CohortLTV
	err := r.db.WithContext(ctx).Raw(`
		SELECT cohort_month,
		       COUNT(*) AS cohort_size,
		       COALESCE(ROUND(SUM(total_revenue)::numeric, 2), 0) AS total_revenue,
		       COALESCE(ROUND(AVG(total_revenue)::numeric, 2), 0) AS avg_ltv,
		       COALESCE(ROUND(AVG(total_transactions)::numeric, 2), 0) AS avg_transactions,
		       COALESCE(ROUND(AVG(average_order_value)::numeric, 2), 0) AS avg_order_value,
		       COUNT(*) FILTER (WHERE is_active) AS active_customers,
		       COUNT(*) FILTER (WHERE is_churned) AS churned_customers,
		       COALESCE(ROUND(COUNT(*) FILTER (WHERE is_churned) * 100.0 / NULLIF(COUNT(*), 0), 2), 0) AS churn_rate
		FROM customer_lifetime_value
		GROUP BY cohort_month
		ORDER BY cohort_month DESC
		LIMIT 12`,
	).Scan(&rows).Error
	return rows, err
}

func (r *CustomerValueRepository) AOVTrend(ctx context.Context, months int) ([]domain.AOVPoint, error) {
	if months <= 0 {
		months = 6
	}
	var rows []domain.AOVPoint
	err := r.db.WithContext(ctx).Raw(`
		SELECT to_char(completed_at, 'YYYY-MM') AS period,
		       COUNT(*) AS transactions,
		       COALESCE(ROUND(SUM(amount)::numeric, 2), 0) AS total_revenue,
		       COALESCE(ROUND(AVG(amount)::numeric, 2), 0) AS average_order_value,
		       COALESCE(MIN(amount), 0) AS min_order,
		       COALESCE(MAX(amount), 0) AS max_order
		FROM payments
		WHERE status = ?
		  AND completed_at >= date_trunc('month', NOW()) - (? || ' months')::interval
		  AND user_id NOT LIKE ?
		GROUP BY 1
		ORDER BY 1 DESC`,
		domain.PaymentStatusSucceeded, months, testUserPattern,
	).Scan(&rows).Error
	return rows, err
}

func (r *CustomerValueRepository) TopCustomers(ctx context.Context, limit int) ([]domain.CustomerLifetimeRecord, error) {
	if limit <= 0 || limit > domain.FilterLimitMax {
		limit = 10
	}
	var recs []domain.CustomerLifetimeRecord
	err := r.db.WithContext(ctx).
		Order("total_revenue DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
