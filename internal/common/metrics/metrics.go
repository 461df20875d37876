// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TemplateCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "template_cache_hits_total",
			Help: "Total number of template cache hits",
		},
	)

	TemplateCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "template_cache_misses_total",
			Help: "Total number of template cache misses",
		},
	)

	TemplateCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "template_cache_entries",
			Help: "Number of templates currently cached",
		},
	)

	TemplateCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "template_cache_evictions_total",
			Help: "Total number of templates evicted by the entry bound",
		},
	)

	TemplateBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "template_build_duration_seconds",
			Help: "Duration of template grid builds in seconds",
		},
		[]string{"tier"},
	)

	TemplatesWarmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "templates_warmed_total",
			Help: "Total number of combinations warmed into the cache by source",
		},
		[]string{"source"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of API request handling in seconds",
		},
		[]string{"path", "status"},
	)
)
