package state

import (
	"time"
)

// DurationToMetric converts a measured rtt into a link metric. Metrics are
// microseconds, clamped to at least 1.
func DurationToMetric(d time.Duration) uint64 {
	return uint64(max(d.Microseconds(), 1))
}
