package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "event_weather"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// annotation service.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec // labels: outcome={success,lock_unavailable,error}
	RunInProgress    prometheus.Gauge
	RunDuration      prometheus.Histogram
	EventsPerRun     prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
	LockFailures     prometheus.Counter

	EventsProcessed *prometheus.CounterVec // labels: outcome={updated,failed,skipped,filtered}

	// Upstream metrics.
	CoordinateLookups *prometheus.CounterVec   // labels: result={hit,miss,not_found,error}
	ForecastRequests  *prometheus.CounterVec   // labels: outcome={success,error,breaker_open}
	UpstreamDuration  *prometheus.HistogramVec // labels: service={mapbox,metno}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Processing runs by outcome.",
		}, []string{"outcome"}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a processing run holds the lock, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a processing run, excluding the quiet period.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		EventsPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "events_per_run",
			Help:      "Number of events considered per run after filtering.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
		LockFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_failures_total",
			Help:      "Runs abandoned because the run lock was not acquired in time.",
		}),
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Events handled by outcome.",
		}, []string{"outcome"}),
		CoordinateLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinate_lookups_total",
			Help:      "Coordinate lookups by result.",
		}, []string{"result"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast API requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"service"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RunsTotal,
		m.RunInProgress,
		m.RunDuration,
		m.EventsPerRun,
		m.LastRunTimestamp,
		m.LockFailures,
		m.EventsProcessed,
		m.CoordinateLookups,
		m.ForecastRequests,
		m.UpstreamDuration,
	}
}
