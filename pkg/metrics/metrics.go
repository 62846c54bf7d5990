// Package metrics holds the Prometheus instruments of the HTTP service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics.
type Metrics struct {
	Requests     *prometheus.CounterVec
	RateLimited  prometheus.Counter
	GridDuration prometheus.Histogram
	CatalogZones prometheus.Gauge
}

// New registers the metrics on reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		}),
		GridDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grid_build_seconds",
			Help:      "Time taken to build a comparison grid",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		CatalogZones: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_zones",
			Help:      "Number of zones in the loaded catalog",
		}),
	}
}
