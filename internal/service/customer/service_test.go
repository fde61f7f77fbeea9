package customer

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/mocks"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestService(repo *mocks.MockCustomerValueRepository) *Service {
	s := NewService(repo, &mocks.MockCache{}, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s
}

func paymentStats(txs int, revenue float64, first, last time.Time) *domain.UserPaymentStats {
	return &domain.UserPaymentStats{
		TotalTransactions: txs,
		TotalRevenue:      revenue,
		AverageOrderValue: revenue / float64(txs),
		FirstPurchaseDate: &first,
		LastPurchaseDate:  &last,
	}
}

func TestRefresh_SkipsUserWithoutPayments(t *testing.T) {
	upserted := false
	repo := &mocks.MockCustomerValueRepository{
		UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
			return &domain.UserPaymentStats{}, nil
		},
		UpsertFunc: func(ctx context.Context, rec *domain.CustomerLifetimeRecord) error {
			upserted = true
			return nil
		},
	}
	service := newTestService(repo)

	rec, err := service.Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rec != nil {
		t.Error("User without payments must be skipped")
	}
	if upserted {
		t.Error("Skipped user must not be written")
	}
}

func TestRefresh_ComputesLifetimeRecord(t *testing.T) {
	first := testNow.AddDate(0, 0, -100)
	last := testNow.AddDate(0, 0, -10)

	var saved *domain.CustomerLifetimeRecord
	repo := &mocks.MockCustomerValueRepository{
		UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
			return paymentStats(4, 400, first, last), nil
		},
		UserSessionStatsFunc: func(ctx context.Context, userID string) (*domain.UserSessionStats, error) {
			return &domain.UserSessionStats{TotalSessions: 12, TotalAnalyses: 6, SessionsWithPurchase: 4}, nil
		},
		UserRevenueSinceFunc: func(ctx context.Context, userID string, since time.Time) (float64, error) {
			days := testNow.Sub(since).Hours() / 24
			switch {
			case days < 31:
				return 100, nil
			case days < 91:
				return 300, nil
			default:
				return 400, nil
			}
		},
		UpsertFunc: func(ctx context.Context, rec *domain.CustomerLifetimeRecord) error {
			saved = rec
			return nil
		},
	}
	service := newTestService(repo)

	rec, err := service.Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rec == nil || saved == nil {
		t.Fatal("Expected a stored record")
	}

	if rec.CustomerLifetimeDays != 90 {
		t.Errorf("Expected lifetime 90 days, got %d", rec.CustomerLifetimeDays)
	}
	// AOV 100 * (4 tx / 90 days * 365) = 1622.22
	if rec.PredictedLTV != 1622.22 {
		t.Errorf("Expected predicted LTV 1622.22, got %f", rec.PredictedLTV)
	}
	if rec.LTV30Days != 100 || rec.LTV90Days != 300 || rec.LTV365Days != 400 {
		t.Errorf("Unexpected LTV windows: %f / %f / %f", rec.LTV30Days, rec.LTV90Days, rec.LTV365Days)
	}
	if rec.CohortMonth != first.Format("2006-01") {
		t.Errorf("Expected cohort month %s, got %s", first.Format("2006-01"), rec.CohortMonth)
	}
	if rec.CohortWeek != first.Format("2006-01-02") {
		t.Errorf("Expected cohort week %s, got %s", first.Format("2006-01-02"), rec.CohortWeek)
	}
	if rec.IsChurned || !rec.IsActive {
		t.Error("Customer 10 days after last purchase must be active")
	}
	if rec.ChurnDate != nil {
		t.Error("Active customer must not carry a churn date")
	}
}

func TestRefresh_ChurnBoundary(t *testing.T) {
	cases := []struct {
		name    string
		last    time.Time
		churned bool
	}{
		{"exactly 90 days is active", testNow.AddDate(0, 0, -90), false},
		{"91 days is churned", testNow.AddDate(0, 0, -91), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := tc.last.AddDate(0, 0, -30)
			repo := &mocks.MockCustomerValueRepository{
				UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
					return paymentStats(2, 200, first, tc.last), nil
				},
			}
			service := newTestService(repo)

			rec, err := service.Refresh(context.Background(), "u1")
			if err != nil {
				t.Fatalf("Refresh failed: %v", err)
			}
			if rec.IsChurned != tc.churned {
				t.Errorf("Expected churned=%v, got %v", tc.churned, rec.IsChurned)
			}
			if rec.IsActive == rec.IsChurned {
				t.Error("IsActive must be the inverse of IsChurned")
			}
			if tc.churned {
				want := tc.last.AddDate(0, 0, domain.ChurnThresholdDays)
				if rec.ChurnDate == nil || !rec.ChurnDate.Equal(want) {
					t.Errorf("Expected churn date %v, got %v", want, rec.ChurnDate)
				}
			}
		})
	}
}

func TestRefresh_SingleDayLifetime(t *testing.T) {
	day := testNow.AddDate(0, 0, -5)
	repo := &mocks.MockCustomerValueRepository{
		UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
			return paymentStats(3, 300, day, day), nil
		},
	}
	service := newTestService(repo)

	rec, err := service.Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rec.CustomerLifetimeDays != 0 {
		t.Errorf("Expected zero lifetime days, got %d", rec.CustomerLifetimeDays)
	}
	// Zero lifetime keeps the raw transaction count: 100 * 3.
	if rec.PredictedLTV != 300 {
		t.Errorf("Expected predicted LTV 300, got %f", rec.PredictedLTV)
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	first := testNow.AddDate(0, 0, -100)
	last := testNow.AddDate(0, 0, -10)

	var saved []*domain.CustomerLifetimeRecord
	repo := &mocks.MockCustomerValueRepository{
		UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
			return paymentStats(4, 400, first, last), nil
		},
		UserSessionStatsFunc: func(ctx context.Context, userID string) (*domain.UserSessionStats, error) {
			return &domain.UserSessionStats{TotalSessions: 12, TotalAnalyses: 6, SessionsWithPurchase: 4}, nil
		},
		UserRevenueSinceFunc: func(ctx context.Context, userID string, since time.Time) (float64, error) {
			return 250, nil
		},
		UpsertFunc: func(ctx context.Context, rec *domain.CustomerLifetimeRecord) error {
			saved = append(saved, rec)
			return nil
		},
	}
	service := newTestService(repo)

	for i := 0; i < 2; i++ {
		if _, err := service.Refresh(context.Background(), "u1"); err != nil {
			t.Fatalf("Refresh %d failed: %v", i+1, err)
		}
	}

	if len(saved) != 2 {
		t.Fatalf("Expected 2 upserts, got %d", len(saved))
	}
	// Full recompute with unchanged inputs must not drift.
	if !reflect.DeepEqual(saved[0], saved[1]) {
		t.Errorf("Repeated refresh produced different records:\n%+v\n%+v", saved[0], saved[1])
	}
}

func TestRefresh_SkipsRecomputeWhenLockHeld(t *testing.T) {
	stored := domain.CustomerLifetimeRecord{UserID: "u1", TotalRevenue: 500}
	statsCalls := 0
	repo := &mocks.MockCustomerValueRepository{
		UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
			statsCalls++
			return &domain.UserPaymentStats{}, nil
		},
		RecordsFunc: func(ctx context.Context, filter domain.QueryFilter) ([]domain.CustomerLifetimeRecord, error) {
			if filter.UserID != "u1" {
				t.Errorf("Expected lookup for u1, got %q", filter.UserID)
			}
			return []domain.CustomerLifetimeRecord{stored}, nil
		},
	}
	service := newTestService(repo)
	service.cache = &mocks.MockCache{
		TryLockFunc: func(ctx context.Context, key string, ttl time.Duration) (bool, error) {
			if key != "clv:u1" {
				t.Errorf("Expected lock key clv:u1, got %q", key)
			}
			return false, nil
		},
	}

	rec, err := service.Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if statsCalls != 0 {
		t.Error("Held lock must skip the recompute")
	}
	if rec == nil || rec.TotalRevenue != 500 {
		t.Errorf("Expected the stored record back, got %+v", rec)
	}
}

func TestRefresh_LockErrorProceeds(t *testing.T) {
	first := testNow.AddDate(0, 0, -40)
	last := testNow.AddDate(0, 0, -5)
	upserted := false
	repo := &mocks.MockCustomerValueRepository{
		UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
			return paymentStats(1, 100, first, last), nil
		},
		UpsertFunc: func(ctx context.Context, rec *domain.CustomerLifetimeRecord) error {
			upserted = true
			return nil
		},
	}
	service := newTestService(repo)
	service.cache = &mocks.MockCache{
		TryLockFunc: func(ctx context.Context, key string, ttl time.Duration) (bool, error) {
			return false, errors.New("redis down")
		},
	}

	rec, err := service.Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rec == nil || !upserted {
		t.Error("Lock errors must not block the refresh")
	}
}

func TestRefreshAll_ContinuesPastFailures(t *testing.T) {
	first := testNow.AddDate(0, 0, -40)
	last := testNow.AddDate(0, 0, -5)
	repo := &mocks.MockCustomerValueRepository{
		PayingUserIDsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"good", "bad", "good2"}, nil
		},
		UserPaymentStatsFunc: func(ctx context.Context, userID string) (*domain.UserPaymentStats, error) {
			if userID == "bad" {
				return nil, errors.New("row corrupted")
			}
			return paymentStats(1, 100, first, last), nil
		},
	}
	service := newTestService(repo)

	n, err := service.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 refreshed, got %d", n)
	}
}
