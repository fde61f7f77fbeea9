package domain

import "time"

// Window is a half-open [From, To) time range.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// LastDays returns the window covering the last n*24h ending at now.
func LastDays(now time.Time, n int) Window {
	return Window{From: now.AddDate(0, 0, -n), To: now}
}

// Today returns the window from the start of the current calendar day to now.
func Today(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{From: start, To: now}
}

// Yesterday returns the prior full calendar day.
func Yesterday(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

// Previous returns the equal-length, back-to-back, non-overlapping window
// immediately before w, as required for period-over-period comparison.
func (w Window) Previous() Window {
	d := w.To.Sub(w.From)
	return Window{From: w.From.Add(-d), To: w.From}
}

// Days returns the window length in days, minimum 1 so that per-day averages
// never divide by zero.
func (w Window) Days() float64 {
	d := w.To.Sub(w.From).Hours() / 24
	if d < 1 {
		return 1
	}
	return d
}
