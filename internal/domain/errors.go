package domain

import "errors"

var (
	// ErrDataSourceUnavailable is returned by metric sources that cannot
	// currently serve queries. The aggregator maps it to empty sections.
	ErrDataSourceUnavailable = errors.New("data source unavailable")

	// ErrInvalidFilter wraps the offending field of a rejected query filter.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrNarrativeUnavailable is returned when the narrative model cannot be
	// reached, including while the circuit breaker is open.
	ErrNarrativeUnavailable = errors.New("narrative unavailable")
)
