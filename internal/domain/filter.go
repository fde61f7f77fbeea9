package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Filter limits. Filters failing validation never reach the query layer.
const (
	FilterLimitMin = 1
	FilterLimitMax = 10000
)

var (
	userIDPattern      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	cohortMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	datePattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}\.\d{3}Z)?$`)
)

// QueryFilter enumerates the recognized query options. Zero values mean
// "not set". All set values are validated before being bound into a query.
type QueryFilter struct {
	DateFrom    string `json:"date_from,omitempty"`    // ISO-8601 date or timestamp
	DateTo      string `json:"date_to,omitempty"`      // ISO-8601 date or timestamp
	Limit       int    `json:"limit,omitempty"`        // [1, 10000]
	UserID      string `json:"user_id,omitempty"`      // [A-Za-z0-9_-]+
	CohortMonth string `json:"cohort_month,omitempty"` // YYYY-MM
}

// Validate checks every set field and returns ErrInvalidFilter (wrapped with
// the offending field) on the first violation.
func (f QueryFilter) Validate() error {
	if f.DateFrom != "" && !datePattern.MatchString(f.DateFrom) {
		return fmt.Errorf("%w: date_from %q", ErrInvalidFilter, f.DateFrom)
	}
	if f.DateTo != "" && !datePattern.MatchString(f.DateTo) {
		return fmt.Errorf("%w: date_to %q", ErrInvalidFilter, f.DateTo)
	}
	if f.Limit != 0 && (f.Limit < FilterLimitMin || f.Limit > FilterLimitMax) {
		return fmt.Errorf("%w: limit %d out of [%d, %d]", ErrInvalidFilter, f.Limit, FilterLimitMin, FilterLimitMax)
	}
	if f.UserID != "" && !userIDPattern.MatchString(f.UserID) {
		return fmt.Errorf("%w: user_id %q", ErrInvalidFilter, f.UserID)
	}
	if f.CohortMonth != "" && !cohortMonthPattern.MatchString(f.CohortMonth) {
		return fmt.Errorf("%w: cohort_month %q", ErrInvalidFilter, f.CohortMonth)
	}
	return nil
}

// ParseDate parses a validated filter date. Bare dates are taken at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if len(s) == len("2006-01-02") {
		return time.Parse("2006-01-02", s)
	}
	return time.Parse("2006-01-02T15:04:05.000Z", s)
}

// LimitOrDefault returns the filter limit, or def when unset.
func (f QueryFilter) LimitOrDefault(def int) int {
	if f.Limit == 0 {
		return def
	}
	return f.Limit
}
