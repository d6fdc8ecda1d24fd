package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation service.
type Metrics struct {
	// Upstream feed metrics.
	FeedFetches      *prometheus.CounterVec   // labels: outcome={success,timeout,upstream_status,transport}
	FeedFetchSeconds *prometheus.HistogramVec // labels: feed={conditions,wind_fallback,history,forecast}

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: class, result={hit,miss}
	CacheClears  prometheus.Counter

	// Derived product metrics.
	ForecastResolutions *prometheus.CounterVec // labels: source={model,trend_projection,unavailable}
	OverlayBuilds       *prometheus.CounterVec // labels: kind={wind,swell}, source={model,synthetic}

	// Fan-out metrics.
	FanoutSeconds   prometheus.Histogram
	StationFailures *prometheus.CounterVec // labels: station

	// Streaming metrics.
	ConditionsPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell_api",
			Name:      "feed_fetches_total",
			Help:      "Upstream feed fetches by outcome.",
		}, []string{"outcome"}),
		FeedFetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "swell_api",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Upstream feed fetch duration per feed type.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"feed"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell_api",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by class and result.",
		}, []string{"class", "result"}),
		CacheClears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swell_api",
			Name:      "cache_clears_total",
			Help:      "Full cache clears requested through the API.",
		}),
		ForecastResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell_api",
			Name:      "forecast_resolutions_total",
			Help:      "Forecast requests by resolved source.",
		}, []string{"source"}),
		OverlayBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell_api",
			Name:      "overlay_builds_total",
			Help:      "Overlay grid builds by kind and data source.",
		}, []string{"kind", "source"}),
		FanoutSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swell_api",
			Name:      "fanout_duration_seconds",
			Help:      "Duration of a full all-stations refresh.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),
		StationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell_api",
			Name:      "station_failures_total",
			Help:      "Per-station failures during the all-stations refresh.",
		}, []string{"station"}),
		ConditionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swell_api",
			Name:      "conditions_published_total",
			Help:      "Observations streamed to the conditions topic.",
		}),
	}

	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchSeconds,
		m.CacheLookups,
		m.CacheClears,
		m.ForecastResolutions,
		m.OverlayBuilds,
		m.FanoutSeconds,
		m.StationFailures,
		m.ConditionsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FeedFetches:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "swell_api", Name: "feed_fetches_total"}, []string{"outcome"}),
		FeedFetchSeconds:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "swell_api", Name: "feed_fetch_duration_seconds"}, []string{"feed"}),
		CacheLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "swell_api", Name: "cache_lookups_total"}, []string{"class", "result"}),
		CacheClears:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "swell_api", Name: "cache_clears_total"}),
		ForecastResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "swell_api", Name: "forecast_resolutions_total"}, []string{"source"}),
		OverlayBuilds:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "swell_api", Name: "overlay_builds_total"}, []string{"kind", "source"}),
		FanoutSeconds:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "swell_api", Name: "fanout_duration_seconds"}),
		StationFailures:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "swell_api", Name: "station_failures_total"}, []string{"station"}),
		ConditionsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "swell_api", Name: "conditions_published_total"}),
	}
}
