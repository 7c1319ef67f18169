package state

import "time"

const (
	// INF marks a link as unusable. Metrics are measured in microseconds of
	// rtt, so any real link is far below this.
	INF = ^(uint64)(0)
)

var (
	// hold timer defaults. rfc 6976 leaves the tick granularity to the
	// implementation, these are overridable per node.
	HoldInterval  = time.Second * 1
	HoldUpTicks   = (uint64)(2)
	HoldDownTicks = (uint64)(5)

	// local link probing
	ProbeDelay             = time.Millisecond * 1000
	HealthCheckDelay       = time.Second * 15
	HealthCheckMaxFailures = 3

	// MetricChangeThreshold filters probe jitter, smaller rtt movements do
	// not re-advertise the link.
	MetricChangeThreshold = (uint64)(100 * 1000) // 100 milliseconds

	// topology ingest
	DbDedupTTL           = time.Second * 3
	GcDelay              = time.Millisecond * 1000
	SnapshotRefreshDelay = time.Second * 10
)

// debug flags
var (
	DBG_trace            = false
	DBG_debug            = false
	DBG_log_topology     = false
	DBG_log_repo_updates = false
)
