package engine

import "errors"

// Fatal error categories. Only these two abort a run; geometry exclusions and
// placement failures are recorded in the RunResult and the run continues.
var (
	// ErrDataUnavailable wraps failures of the sales, catalog, category or
	// gondola sources.
	ErrDataUnavailable = errors.New("data source unavailable")

	// ErrInvalidConfiguration covers malformed weights, thresholds or target
	// stock params detected before any placement is attempted.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
