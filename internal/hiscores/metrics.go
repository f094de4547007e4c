package hiscores

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hiscores_fetch_total",
		Help: "Total number of upstream hiscores fetches by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hiscores_fetch_duration_seconds",
		Help:    "Duration of upstream hiscores fetches",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hiscores_cache_hits_total",
		Help: "Total number of snapshot cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hiscores_cache_misses_total",
		Help: "Total number of snapshot cache misses",
	})

	groupFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hiscores_group_fallbacks_total",
		Help: "Total number of group members rendered from fallback data",
	})
)
