// Package customer maintains the per-customer lifetime value rollup.
package customer

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/observability/telemetry"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
)

// refreshLockTTL bounds how long a per-user refresh lock can outlive a
// crashed holder.
const refreshLockTTL = time.Minute

type Service struct {
	repo  ports.CustomerValueRepository
	cache ports.Cache
	now   func() time.Time
	log   *zap.Logger
}

func NewService(repo ports.CustomerValueRepository, cache ports.Cache, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   time.Now,
		log:   log,
	}
}

// Refresh recomputes one customer's lifetime record from scratch and
// replaces the stored row. Customers without a single succeeded payment are
// skipped. A per-user lock keeps overlapping callers (API, scheduled job,
// backfill) from interleaving the read-then-write recompute; when another
// refresh holds the lock the stored record is returned as-is.
func (s *Service) Refresh(ctx context.Context, userID string) (*domain.CustomerLifetimeRecord, error) {
	lockKey := "clv:" + userID
	acquired, err := s.cache.TryLock(ctx, lockKey, refreshLockTTL)
	if err != nil {
		s.log.Warn("Refresh lock unavailable, proceeding anyway", zap.String("user_id", userID), zap.Error(err))
	} else if !acquired {
		return s.storedRecord(ctx, userID)
	} else {
		defer func() {
			if err := s.cache.Unlock(ctx, lockKey); err != nil {
				s.log.Warn("Failed to release refresh lock", zap.String("user_id", userID), zap.Error(err))
			}
		}()
	}

	payments, err := s.repo.UserPaymentStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("payment stats for %s: %w", userID, err)
	}
	if payments.TotalTransactions == 0 || payments.FirstPurchaseDate == nil || payments.LastPurchaseDate == nil {
		return nil, nil
	}

	sessions, err := s.repo.UserSessionStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("session stats for %s: %w", userID, err)
	}

	now := s.now().UTC()
	rec := s.build(userID, payments, sessions, now)

	ltvWindows := []struct {
		days int
		dst  *float64
	}{
		{30, &rec.LTV30Days},
		{90, &rec.LTV90Days},
		{365, &rec.LTV365Days},
	}
	for _, w := range ltvWindows {
		revenue, err := s.repo.UserRevenueSince(ctx, userID, now.AddDate(0, 0, -w.days))
		if err != nil {
			return nil, fmt.Errorf("ltv %d days for %s: %w", w.days, userID, err)
		}
		*w.dst = revenue
	}

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", userID, err)
	}
	telemetry.CustomerValueRefreshes.Inc()
	return rec, nil
}

// storedRecord returns the persisted record without recomputing, used when a
// concurrent refresh owns the per-user lock.
func (s *Service) storedRecord(ctx context.Context, userID string) (*domain.CustomerLifetimeRecord, error) {
	recs, err := s.repo.Records(ctx, domain.QueryFilter{UserID: userID, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("stored record for %s: %w", userID, err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *Service) build(userID string, p *domain.UserPaymentStats, sess *domain.UserSessionStats, now time.Time) *domain.CustomerLifetimeRecord {
	first := *p.FirstPurchaseDate
	last := *p.LastPurchaseDate

	lifetimeDays := int(math.Floor(last.Sub(first).Hours() / 24))
	daysSinceLast := now.Sub(last).Hours() / 24

	// Simple projection: average check times the purchase rate extrapolated
	// to a year. Customers with a single-day lifetime keep their raw count.
	avgTxPerYear := float64(p.TotalTransactions)
	if lifetimeDays > 0 {
		avgTxPerYear = float64(p.TotalTransactions) / float64(lifetimeDays) * 365
	}
	predicted := p.AverageOrderValue * avgTxPerYear

	// Strictly greater, exactly 90 days is still active.
	churned := daysSinceLast > domain.ChurnThresholdDays
	var churnDate *time.Time
	if churned {
		d := last.AddDate(0, 0, domain.ChurnThresholdDays)
		churnDate = &d
	}

	return &domain.CustomerLifetimeRecord{
		UserID:               userID,
		TotalRevenue:         p.TotalRevenue,
		TotalTransactions:    p.TotalTransactions,
		AverageOrderValue:    p.AverageOrderValue,
		FirstPurchaseDate:    first,
		LastPurchaseDate:     last,
		CustomerLifetimeDays: lifetimeDays,
		TotalSessions:        sess.TotalSessions,
		TotalAnalyses:        sess.TotalAnalyses,
		SessionsWithPurchase: sess.SessionsWithPurchase,
		PredictedLTV:         math.Round(predicted*100) / 100,
		// Cohort week keeps the historical format: the calendar day of the
		// first purchase, not an ISO week.
		CohortMonth:           first.Format("2006-01"),
		CohortWeek:            first.Format("2006-01-02"),
		IsActive:              !churned,
		IsChurned:             churned,
		ChurnDate:             churnDate,
		DaysSinceLastPurchase: math.Round(daysSinceLast*100) / 100,
		UpdatedAt:             now,
	}
}

// RefreshAll recomputes every paying customer. Individual failures are
// logged and skipped so one bad row cannot abort a scheduled refresh.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.repo.PayingUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list paying users: %w", err)
	}

	refreshed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		rec, err := s.Refresh(ctx, id)
		if err != nil {
			s.log.Error("Customer refresh failed", zap.String("user_id", id), zap.Error(err))
			continue
		}
		if rec != nil {
			refreshed++
		}
	}

	s.log.Info("Customer value refresh completed",
		zap.Int("candidates", len(ids)),
		zap.Int("refreshed", refreshed),
	)
	return refreshed, nil
}

// Overview bundles the portfolio-level views for the LTV report commands.
type Overview struct {
	Churn        *domain.ChurnStats              `json:"churn"`
	CohortChurn  []domain.CohortChurn            `json:"cohort_churn"`
	CohortLTV    []domain.CohortLTV              `json:"cohort_ltv"`
	AOVTrend     []domain.AOVPoint               `json:"aov_trend"`
	TopCustomers []domain.CustomerLifetimeRecord `json:"top_customers"`
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	churn, err := s.repo.ChurnStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("churn stats: %w", err)
	}
	cohortChurn, err := s.repo.ChurnByCohort(ctx)
	if err != nil {
		return nil, fmt.Errorf("cohort churn: %w", err)
	}
	cohortLTV, err := s.repo.CohortLTV(ctx)
	if err != nil {
		return nil, fmt.Errorf("cohort ltv: %w", err)
	}
	aov, err := s.repo.AOVTrend(ctx, 6)
	if err != nil {
		return nil, fmt.Errorf("aov trend: %w", err)
	}
	top, err := s.repo.TopCustomers(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	return &Overview{
		Churn:        churn,
		CohortChurn:  cohortChurn,
		CohortLTV:    cohortLTV,
		AOVTrend:     aov,
		TopCustomers: top,
	}, nil
}

// Records exposes filtered lifetime records for the API layer.
func (s *Service) Records(ctx context.Context, filter domain.QueryFilter) ([]domain.CustomerLifetimeRecord, error) {
	return s.repo.Records(ctx, filter)
}
