package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hospital_charges"

const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
	CacheHit         = "hit"
	CacheMiss        = "miss"
	CacheUnavailable = "unavailable"
)

// Metrics holds the estimator collectors.
type Metrics struct {
	Estimates       *prometheus.CounterVec
	EstimateLatency prometheus.Histogram
	CacheLookups    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimator",
			Name:      "estimates_total",
			Help:      "Charge estimate requests by outcome.",
		}, []string{"outcome"}),
		EstimateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "estimator",
			Name:      "estimate_duration_seconds",
			Help:      "Time spent producing a charge estimate.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimator",
			Name:      "cache_lookups_total",
			Help:      "Prediction cache lookups by result.",
		}, []string{"result"}),
		gatherer: reg,
	}
	reg.MustRegister(m.Estimates, m.EstimateLatency, m.CacheLookups)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
