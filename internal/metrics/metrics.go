// Package metrics exposes the relay's Prometheus collector.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec // outcome label: ok|error
	UpstreamDuration prometheus.Histogram

	JourneysPriced prometheus.Counter
	FareErrors     prometheus.Counter

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_upstream_requests_total",
			Help: "Total requests forwarded to the upstream trip planner.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_upstream_duration_seconds",
			Help:    "Duration of upstream trip planner requests.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		JourneysPriced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_journeys_priced_total",
			Help: "Total journeys for which fares were recomputed.",
		}),
		FareErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_fare_errors_total",
			Help: "Total journeys skipped because fare computation failed.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_cache_hits_total",
			Help: "Total upstream responses served from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_cache_misses_total",
			Help: "Total cache lookups that fell through to the upstream.",
		}),
	}

	reg.MustRegister(
		c.UpstreamRequests, c.UpstreamDuration,
		c.JourneysPriced, c.FareErrors,
		c.CacheHits, c.CacheMisses,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
