package utils

import "time"

// -----------------------------------------------------------------------------

// DefaultRefreshInterval matches the dashboard's one-minute polling cadence
const DefaultRefreshInterval = 60 * time.Second

// -----------------------------------------------------------------------------

// IntervalFromSeconds converts a configured interval, falling back to the
// default for non-positive values.
func IntervalFromSeconds(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultRefreshInterval
	}
	return time.Duration(seconds) * time.Second
}
