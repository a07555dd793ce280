package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	hits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hiregate",
			Name:      "cache_hits_total",
			Help:      "Snapshot reads served from the cache without an upstream call",
		},
		[]string{"kind"},
	)

	misses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hiregate",
			Name:      "cache_misses_total",
			Help:      "Snapshot reads that required an upstream fetch",
		},
		[]string{"kind"},
	)

	refreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hiregate",
			Name:      "cache_refreshes_total",
			Help:      "Successful snapshot replacements",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(hits)
	prometheus.MustRegister(misses)
	prometheus.MustRegister(refreshes)
}
