package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	RoundLatency     = metric.NewHistogram("1m1s")
	RoundsRun        = metric.NewCounter("10s1s")
	UpdatesDelivered = metric.NewCounter("10s1s")
	RoutesExpired    = metric.NewCounter("10s1s")
	RoutesRemoved    = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("ripsim:Rounds/s", RoundsRun)
	expvar.Publish("ripsim:UpdatesDelivered/s", UpdatesDelivered)
	expvar.Publish("ripsim:RoutesExpired/s", RoutesExpired)
	expvar.Publish("ripsim:RoutesRemoved/s", RoutesRemoved)
	expvar.Publish("ripsim:RoundLatency (µs)", RoundLatency)
}
