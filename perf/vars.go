package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency = metric.NewHistogram("1m1s")
	ProbeLatency    = metric.NewHistogram("10s1s")
	DbApplies       = metric.NewCounter("10s1s")
	DbDedups        = metric.NewCounter("10s1s")
	LinkFlaps       = metric.NewCounter("10s1s")
	HoldExpiries    = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("weft:DbApplies/s", DbApplies)
	expvar.Publish("weft:DbDedups/s", DbDedups)

	expvar.Publish("weft:LinkFlaps/s", LinkFlaps)
	expvar.Publish("weft:HoldExpiries/s", HoldExpiries)
	expvar.Publish("weft:ProbeLatency (µs)", ProbeLatency)
	expvar.Publish("weft:DispatchLatency (µs)", DispatchLatency)
}
